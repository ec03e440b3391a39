// Package template loads the markdown mail templates, letting files in an
// override directory replace the embedded defaults.
package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Mail template names.
const (
	MailAllocationCreated     = "allocation_created"
	MailLicenceGranted        = "licence_granted"
	MailDistributionCompleted = "distribution_completed"
	MailUserCreated           = "user_created"
	MailImportFailed          = "import_failed"
	MailEnrolmentFailed       = "enrolment_failed"
)

// Blocks every mail template defines.
const (
	BlockSubject = "subject"
	BlockBody    = "body"
)

const templateExt = ".md.tmpl"

//go:embed mail/*.md.tmpl
var defaultTemplates embed.FS

// MailTemplateLoader holds parsed mail templates keyed by name.
type MailTemplateLoader struct {
	templates map[string]*template.Template
	path      string
	logger    logger.Interface
}

// NewMailTemplateLoader creates a loader. An empty path uses only the embedded defaults.
func NewMailTemplateLoader(path string, logger logger.Interface) *MailTemplateLoader {
	return &MailTemplateLoader{
		templates: make(map[string]*template.Template),
		path:      path,
		logger:    logger,
	}
}

// Load parses the embedded templates, then any {name}.md.tmpl found in the
// override directory. A missing directory is not an error.
func (l *MailTemplateLoader) Load() error {
	entries, err := defaultTemplates.ReadDir("mail")
	if err != nil {
		return fmt.Errorf("failed to read embedded mail templates: %w", err)
	}
	for _, e := range entries {
		content, err := defaultTemplates.ReadFile("mail/" + e.Name())
		if err != nil {
			return fmt.Errorf("failed to read embedded mail template %s: %w", e.Name(), err)
		}
		if err := l.add(strings.TrimSuffix(e.Name(), templateExt), string(content)); err != nil {
			return err
		}
	}

	if l.path == "" {
		return nil
	}
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		l.logger.Warnw("mail template directory not found, using defaults", "path", l.path)
		return nil
	}

	overridden := 0
	for _, name := range l.Names() {
		filePath := filepath.Join(l.path, name+templateExt)
		content, err := os.ReadFile(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				l.logger.Warnw("failed to read mail template file", "file", filePath, "error", err)
			}
			continue
		}
		if err := l.add(name, string(content)); err != nil {
			return err
		}
		overridden++
		l.logger.Infow("loaded mail template override", "name", name, "file", filePath, "size", len(content))
	}

	l.logger.Infow("mail templates loaded", "count", len(l.templates), "overridden", overridden)
	return nil
}

func (l *MailTemplateLoader) add(name, content string) error {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse mail template %s: %w", name, err)
	}
	for _, block := range []string{BlockSubject, BlockBody} {
		if tmpl.Lookup(block) == nil {
			return fmt.Errorf("mail template %s does not define %q", name, block)
		}
	}
	l.templates[name] = tmpl
	return nil
}

// Get returns the parsed template for name.
func (l *MailTemplateLoader) Get(name string) (*template.Template, bool) {
	tmpl, ok := l.templates[name]
	return tmpl, ok
}

// Names returns the loaded template names in sorted order.
func (l *MailTemplateLoader) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
