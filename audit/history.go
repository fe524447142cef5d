package audit

import (
	"sort"
	"strings"

	"github.com/warp/personnel-audit/generic"
)

// =============================================================================
// HISTORY - Legacy promotions and typed career actions, one chronology
// =============================================================================

// Kind is the normalized career event type.
type Kind string

const (
	KindPromotion     Kind = "PROMOTION"
	KindAdvancement   Kind = "ADVANCEMENT"
	KindUpgrading     Kind = "UPGRADING"
	KindConversion    Kind = "CONVERSION"
	KindConfirmation  Kind = "CONFIRMATION"
	KindTransfer      Kind = "TRANSFER"
	KindRedesignation Kind = "REDESIGNATION"
)

// IsPromotion reports whether the event type must carry an authority
// reference and gazette number.
func (k Kind) IsPromotion() bool {
	switch k {
	case KindPromotion, KindAdvancement, KindUpgrading:
		return true
	}
	return false
}

// Source records which shape an entry was normalized from.
type Source string

const (
	SourcePromotion    Source = "promotion"
	SourceCareerAction Source = "career_action"
)

// HistoryEntry is the single normalized career event shape every history
// check consumes.
type HistoryEntry struct {
	Date          generic.TimePoint
	ToGrade       string
	ToStep        string
	ToDesignation string
	ToSalary      string
	AuthorityRef  string
	GazetteNo     string
	Kind          Kind
	Source        Source
}

// Grade parses ToGrade.
func (e HistoryEntry) Grade() (int, bool) { return parseLevel(e.ToGrade) }

// MergeHistory normalizes both history shapes and orders them by date.
// Undated entries sort last; ties keep input order, promotions first.
func MergeHistory(promotions []Promotion, actions []CareerAction) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(promotions)+len(actions))
	for _, p := range promotions {
		entries = append(entries, HistoryEntry{
			Date:          p.Date,
			ToGrade:       p.GradeLevel,
			ToStep:        p.Step,
			ToDesignation: p.Designation,
			ToSalary:      p.Salary,
			AuthorityRef:  p.AuthorityRef,
			GazetteNo:     p.GazetteNo,
			Kind:          KindPromotion,
			Source:        SourcePromotion,
		})
	}
	for _, a := range actions {
		kind := Kind(normalizeTag(a.Type))
		if kind == "" {
			kind = KindPromotion
		}
		entries = append(entries, HistoryEntry{
			Date:          a.EffectiveDate,
			ToGrade:       a.ToGradeLevel,
			ToStep:        a.ToStep,
			ToDesignation: a.ToDesignation,
			ToSalary:      a.ToSalary,
			AuthorityRef:  a.AuthorityRef,
			GazetteNo:     a.GazetteNo,
			Kind:          kind,
			Source:        SourceCareerAction,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
	return entries
}

// dated returns only entries with a recorded date, preserving order.
func dated(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Date.IsZero() {
			out = append(out, e)
		}
	}
	return out
}

func describeEntry(e HistoryEntry) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Kind)))
	if present(e.ToGrade) {
		b.WriteString(" to GL ")
		b.WriteString(strings.TrimSpace(e.ToGrade))
	}
	if !e.Date.IsZero() {
		b.WriteString(" on ")
		b.WriteString(e.Date.String())
	}
	return b.String()
}
