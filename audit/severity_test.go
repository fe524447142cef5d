package audit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/personnel-audit/audit"
)

func TestSynthesize(t *testing.T) {
	assert.Equal(t, audit.SeverityNone, audit.Synthesize(nil))
	assert.Equal(t, audit.SeverityLow, audit.Synthesize([]audit.Flag{{Category: "X"}}))
	assert.Equal(t, audit.SeverityHigh, audit.Synthesize([]audit.Flag{
		{Severity: audit.SeverityMedium},
		{Severity: audit.SeverityHigh},
		{},
	}))
}

func TestSynthesize_AddingFlagsNeverLowersSeverity(t *testing.T) {
	flags := []audit.Flag{{Severity: audit.SeverityHigh}}
	before := audit.Synthesize(flags)

	for _, extra := range []audit.Severity{audit.SeverityNone, audit.SeverityLow, audit.SeverityMedium, audit.SeverityCritical} {
		after := audit.Synthesize(append(flags, audit.Flag{Severity: extra}))
		assert.True(t, after.AtLeast(before), "adding %q lowered %q to %q", extra, before, after)
	}
}

func TestOverpaymentSeverity_Tiers(t *testing.T) {
	th := audit.DefaultThresholds()
	tests := []struct {
		amount int64
		want   audit.Severity
	}{
		{10000, audit.SeverityNone},
		{50000, audit.SeverityMedium},
		{199999, audit.SeverityMedium},
		{200000, audit.SeverityHigh},
		{500000, audit.SeverityCritical},
		{1000000, audit.SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, audit.OverpaymentSeverity(decimal.NewFromInt(tt.amount), th), "%d", tt.amount)
	}
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, audit.SeverityHigh, audit.ParseSeverity(" high "))
	assert.Equal(t, audit.SeverityNone, audit.ParseSeverity("urgent"))
	assert.Equal(t, audit.SeverityCritical, audit.SeverityMedium.Max(audit.SeverityCritical))
}
