package audit

import (
	"strings"

	"github.com/warp/personnel-audit/generic"
)

func evalCareerHistory(in *Input) []Flag {
	s := in.Snapshot
	th := in.th()
	var out []Flag

	if !s.FirstAppointment.IsZero() {
		for _, e := range in.History {
			if !e.Date.IsZero() && e.Date.Before(s.FirstAppointment) {
				out = append(out, flag(CategoryCareerHistory,
					"%s predates first appointment %s", describeEntry(e), s.FirstAppointment))
			}
		}
	}

	for _, e := range in.History {
		if !e.Kind.IsPromotion() {
			continue
		}
		var missing []string
		if !present(e.AuthorityRef) {
			missing = append(missing, "authority reference")
		}
		if !present(e.GazetteNo) {
			missing = append(missing, "gazette number")
		}
		if len(missing) > 0 {
			out = append(out, flag(CategoryCareerHistory, "%s has no %s", describeEntry(e), strings.Join(missing, " or ")))
		}
	}

	chrono := dated(in.History)

	// Grade movement is measured from the date the previous distinct grade
	// was first reached. Gradeless and same-grade entries do not reset it.
	var (
		held      int
		heldSince generic.TimePoint
		holding   bool
	)
	for _, cur := range chrono {
		cg, ok := cur.Grade()
		if !ok {
			continue
		}
		if !holding {
			held, heldSince, holding = cg, cur.Date, true
			continue
		}
		switch {
		case cg < held:
			out = append(out, flag(CategoryCareerHistory,
				"backward grade movement from GL %02d on %s to GL %02d on %s", held, heldSince, cg, cur.Date))
		case cg > held:
			required := YearsRequired(held, in.Params.PromotionIntervals)
			if months := generic.MonthsBetween(heldSince, cur.Date); months < required*12 {
				out = append(out, flag(CategoryCareerHistory,
					"illegal speed: GL %02d to GL %02d after %.1f years, GL %02d requires %d years",
					held, cg, float64(months)/12, held, required).withSeverity(SeverityHigh))
			}
		default:
			continue
		}
		held, heldSince = cg, cur.Date
	}

	for i := 1; i < len(chrono); i++ {
		prev, cur := chrono[i-1], chrono[i]
		if gap := generic.YearsBetween(prev.Date, cur.Date); gap > th.MaxHistoryGapYears {
			out = append(out, flag(CategoryCareerHistory,
				"no career movement recorded for %.1f years between %s and %s", gap, prev.Date, cur.Date))
		}
	}

	if g, ok := in.Grade(); ok {
		entry := in.EntryGrade()
		if delta := g - entry; delta >= th.MinDeltaForHistoryGap {
			promotions := 0
			for _, e := range in.History {
				if e.Kind.IsPromotion() {
					promotions++
				}
			}
			if promotions*th.GradesPerPromotion < delta {
				out = append(out, flag(CategoryCareerHistory,
					"GL %02d is %d grades above entry GL %02d but only %d promotion(s) are recorded",
					g, delta, entry, promotions))
			}
		}
	}
	return out
}
