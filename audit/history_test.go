package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
)

func TestMergeHistory_NormalizesBothShapesInDateOrder(t *testing.T) {
	// GIVEN: Legacy promotions and typed career actions interleaved in time
	// WHEN: Merged
	// THEN: One chronology, undated entries last, kinds normalized

	entries := audit.MergeHistory(
		[]audit.Promotion{
			{Date: d("2019-01-01"), GradeLevel: "10", AuthorityRef: "P2"},
			{GradeLevel: "12"},
			{Date: d("2015-01-01"), GradeLevel: "09", AuthorityRef: "P1"},
		},
		[]audit.CareerAction{
			{Type: "upgrading", EffectiveDate: d("2017-06-01"), ToGradeLevel: "09", ToStep: "04"},
			{EffectiveDate: d("2022-01-01"), ToGradeLevel: "11"},
			{Type: "inter-ministerial transfer", EffectiveDate: d("2016-01-01")},
		},
	)

	require.Len(t, entries, 6)
	var grades []string
	for _, e := range entries {
		grades = append(grades, e.ToGrade)
	}
	assert.Equal(t, []string{"09", "", "09", "10", "11", "12"}, grades)

	assert.Equal(t, audit.SourcePromotion, entries[0].Source)
	assert.Equal(t, audit.Kind("INTER_MINISTERIAL_TRANSFER"), entries[1].Kind)
	assert.Equal(t, audit.KindUpgrading, entries[2].Kind)
	assert.Equal(t, "04", entries[2].ToStep)
	assert.Equal(t, audit.KindPromotion, entries[4].Kind, "blank action type reads as promotion")
	assert.True(t, entries[5].Date.IsZero())
}

func TestMergeHistory_TiesKeepPromotionsFirst(t *testing.T) {
	entries := audit.MergeHistory(
		[]audit.Promotion{{Date: d("2020-01-01"), GradeLevel: "10"}},
		[]audit.CareerAction{{Type: "CONFIRMATION", EffectiveDate: d("2020-01-01"), ToGradeLevel: "09"}},
	)

	require.Len(t, entries, 2)
	assert.Equal(t, audit.SourcePromotion, entries[0].Source)
	assert.Equal(t, audit.SourceCareerAction, entries[1].Source)
}

func TestKind_IsPromotion(t *testing.T) {
	assert.True(t, audit.KindPromotion.IsPromotion())
	assert.True(t, audit.KindAdvancement.IsPromotion())
	assert.True(t, audit.KindUpgrading.IsPromotion())
	assert.False(t, audit.KindConfirmation.IsPromotion())
	assert.False(t, audit.KindTransfer.IsPromotion())
}

func TestQualificationResolver(t *testing.T) {
	g, ok := audit.MinimumEntryGrade("b.sc")
	assert.True(t, ok)
	assert.Equal(t, 8, g)

	g, ok = audit.MinimumEntryGrade("PhD")
	assert.True(t, ok)
	assert.Equal(t, 9, g)

	_, ok = audit.MinimumEntryGrade("Diploma in Theology")
	assert.False(t, ok)

	code, rank, ok := audit.CertificateRank("WAEC (May/June)")
	assert.True(t, ok)
	assert.Equal(t, "WAEC", code)
	assert.Equal(t, 2, rank)

	age, ok := audit.MinimumAgeForCertificate("M.Sc")
	assert.True(t, ok)
	assert.Equal(t, 21, age)

	assert.True(t, audit.RequiresNYSCService("HND"))
	assert.False(t, audit.RequiresNYSCService("NCE"))
}
