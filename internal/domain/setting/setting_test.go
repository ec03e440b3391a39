package setting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemSetting(t *testing.T) {
	s, err := NewSystemSetting("licensing", "cron_running", ValueTypeBool, "reconciliation lock")
	require.NoError(t, err)
	assert.Contains(t, s.SID(), "setting_")
	assert.Equal(t, 1, s.Version())

	_, err = NewSystemSetting("", "k", ValueTypeBool, "")
	assert.Error(t, err)
	_, err = NewSystemSetting("c", "", ValueTypeBool, "")
	assert.Error(t, err)
	_, err = NewSystemSetting("c", "k", ValueType("blob"), "")
	assert.Error(t, err)
}

func TestSystemSetting_TimeValue(t *testing.T) {
	s, err := NewSystemSetting("licensing", "cron_last_run", ValueTypeTime, "")
	require.NoError(t, err)

	zero, err := s.GetTimeValue()
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	at := time.Date(2026, 3, 4, 5, 6, 7, 890, time.FixedZone("X", 3600))
	require.NoError(t, s.SetTimeValue(at, 0))

	got, err := s.GetTimeValue()
	require.NoError(t, err)
	assert.True(t, got.Equal(at))
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 2, s.Version())

	assert.Error(t, s.SetBoolValue(true, 0), "type mismatch")
}

func TestSystemSetting_BoolValue(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "", want: false},
		{value: "true", want: true},
		{value: "false", want: false},
		{value: "1", want: true},
		{value: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := &SystemSetting{value: tt.value, valueType: ValueTypeBool}
			got, err := s.GetBoolValue()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func FuzzGetTimeValue(f *testing.F) {
	for _, seed := range []string{"", "2026-01-01T00:00:00Z", "garbage", "2026-13-01T00:00:00Z"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		s := &SystemSetting{value: input, valueType: ValueTypeTime}
		got, err := s.GetTimeValue()
		if err == nil && !got.IsZero() && got.Location() != time.UTC {
			t.Errorf("GetTimeValue(%q) returned non-UTC location", input)
		}
	})
}
