package markdown

import (
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownService_ToHTMLSanitized(t *testing.T) {
	svc := NewMarkdownService()

	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{name: "emphasis", input: "**bold**", contains: "<strong>bold</strong>"},
		{name: "script stripped", input: "hi <script>alert(1)</script>", contains: "hi", excludes: "<script>"},
		{name: "links kept", input: "[course](https://lms.example.com/course/view.php?id=3)", contains: `href="https://lms.example.com/course/view.php?id=3"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.ToHTMLSanitized(tt.input)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, out, tt.excludes)
			}
		})
	}
}

func TestMarkdownService_Render(t *testing.T) {
	svc := NewMarkdownService()
	tmpl := template.Must(template.New("welcome").Parse("Hello **{{.Name}}**\n\nYour username is `{{.Username}}`.\n"))

	htmlBody, plain, err := svc.Render(tmpl, map[string]string{"Name": "Ann", "Username": "ann"})
	require.NoError(t, err)
	assert.Contains(t, htmlBody, "<strong>Ann</strong>")
	assert.Contains(t, htmlBody, "<code>ann</code>")
	assert.Equal(t, "Hello **Ann**\n\nYour username is `ann`.", plain)
}
