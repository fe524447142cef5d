package audit

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ReasonChange summarizes how the flag reasons moved between two audits of
// the same record.
type ReasonChange struct {
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	Unchanged int      `json:"unchanged"`
	Unified   string   `json:"unified,omitempty"` // "+ " / "- " / "  " prefixed lines
}

// Changed reports whether any reason was raised or cleared.
func (c ReasonChange) Changed() bool { return len(c.Added) > 0 || len(c.Removed) > 0 }

// DiffReasons compares two reason lists line by line. A reason that only
// moved position counts as unchanged.
func DiffReasons(before, after []string) ReasonChange {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(reasonText(before), reasonText(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		c       ReasonChange
		unified strings.Builder
	)
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				c.Added = append(c.Added, line)
				unified.WriteString("+ " + line + "\n")
			case diffmatchpatch.DiffDelete:
				c.Removed = append(c.Removed, line)
				unified.WriteString("- " + line + "\n")
			default:
				c.Unchanged++
				unified.WriteString("  " + line + "\n")
			}
		}
	}

	moved := make(map[string]int)
	for _, r := range c.Removed {
		moved[r]++
	}
	var added []string
	for _, r := range c.Added {
		if moved[r] > 0 {
			moved[r]--
			c.Unchanged++
			continue
		}
		added = append(added, r)
	}
	var removed []string
	for _, r := range c.Removed {
		if n, ok := moved[r]; ok && n > 0 {
			moved[r]--
			removed = append(removed, r)
		}
	}
	c.Added, c.Removed = added, removed
	c.Unified = unified.String()
	return c
}

func reasonText(reasons []string) string {
	var sb strings.Builder
	for _, r := range reasons {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
