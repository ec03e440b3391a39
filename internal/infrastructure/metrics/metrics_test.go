package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the samples of a counter family matching label=value.
func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := label == ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					match = true
				}
			}
			if match && m.GetCounter() != nil {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestRecordLicencesCreated(t *testing.T) {
	before := counterValue(t, "licensing_licences_created_total", "source", SourceImport)
	RecordLicencesCreated(SourceImport, 3)
	RecordLicencesCreated(SourceImport, 0)
	after := counterValue(t, "licensing_licences_created_total", "source", SourceImport)
	assert.Equal(t, 3.0, after-before)
}

func TestRecordEnrolment(t *testing.T) {
	beforeFail := counterValue(t, "licensing_enrolment_failures_total", "product_type", "course")
	beforeOK := counterValue(t, "licensing_distributions_enrolled_total", "", "")

	RecordEnrolment("course", errors.New("boom"))
	RecordEnrolment("course", nil)

	assert.Equal(t, 1.0, counterValue(t, "licensing_enrolment_failures_total", "product_type", "course")-beforeFail)
	assert.Equal(t, 1.0, counterValue(t, "licensing_distributions_enrolled_total", "", "")-beforeOK)
}

func TestRecordImportedAccount(t *testing.T) {
	before := counterValue(t, "licensing_import_accounts_total", "outcome", "created")
	RecordImportedAccount(true)
	assert.Equal(t, 1.0, counterValue(t, "licensing_import_accounts_total", "outcome", "created")-before)
}
