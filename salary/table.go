/*
Package salary is the salary service the registry and the audit engine consume.

PURPOSE:
  Maps a grade level, step and salary scale to an annual basic amount, and
  expands that amount into the gross/net breakdown shown on the salary
  page. The audit engine treats it as a black box (audit.SalaryLookup).

TABLE SHAPE:
  Each scale holds one row per grade level: Base is the step-1 annual basic,
  Increment is added for every step above 1.

    amount(grade, step) = Base + Increment * (step - 1),  step 1..15

  An empty scale identifier resolves to the table's default scale.

YAML:
  default_scale: CONPSS
  scales:
    CONPSS:
      "08": {base: 780000, increment: 19200}
    CONMESS:
      "08": {base: 1250000, increment: 31000}

SEE ALSO:
  - breakdown.go: Gross/net breakdown
  - audit/engine.go: SalaryLookup interface
*/
package salary

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScale = "CONPSS"
	MaxStep      = 15
)

// GradeRow is one grade level of a scale.
type GradeRow struct {
	Base      decimal.Decimal
	Increment decimal.Decimal
}

// Table is an immutable set of salary scales. Safe for concurrent reads.
type Table struct {
	defaultScale string
	scales       map[string]map[int]GradeRow
}

// Compile-time check that Table satisfies the engine's lookup contract.
var _ audit.SalaryLookup = (*Table)(nil)

// Lookup returns the annual basic for grade/step on scale.
func (t *Table) Lookup(gradeLevel, step int, scale string) (decimal.Decimal, bool) {
	if step < 1 || step > MaxStep {
		return decimal.Zero, false
	}
	rows, ok := t.scales[t.resolve(scale)]
	if !ok {
		return decimal.Zero, false
	}
	row, ok := rows[gradeLevel]
	if !ok {
		return decimal.Zero, false
	}
	return row.Base.Add(row.Increment.Mul(decimal.NewFromInt(int64(step - 1)))), true
}

// Scales lists the scale identifiers in the table, sorted.
func (t *Table) Scales() []string {
	out := make([]string, 0, len(t.scales))
	for name := range t.scales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (t *Table) DefaultScale() string { return t.defaultScale }

func (t *Table) resolve(scale string) string {
	scale = strings.ToUpper(strings.TrimSpace(scale))
	if scale == "" {
		return t.defaultScale
	}
	return scale
}

// =============================================================================
// DEFAULT TABLE - Built-in CONPSS-style annual basics
// =============================================================================

var conpss = [][2]int64{
	{360000, 6000},   // GL 01
	{372000, 6600},   // GL 02
	{390000, 7200},   // GL 03
	{420000, 8400},   // GL 04
	{456000, 9600},   // GL 05
	{504000, 12000},  // GL 06
	{630000, 15000},  // GL 07
	{780000, 19200},  // GL 08
	{900000, 22800},  // GL 09
	{1080000, 27600}, // GL 10
	{1200000, 30000}, // GL 11
	{1380000, 34800}, // GL 12
	{1560000, 39600}, // GL 13
	{1800000, 45600}, // GL 14
	{2100000, 52800}, // GL 15
	{2460000, 61200}, // GL 16
	{2880000, 72000}, // GL 17
}

// DefaultTable returns the built-in single-scale table.
func DefaultTable() *Table {
	rows := make(map[int]GradeRow, len(conpss))
	for i, r := range conpss {
		rows[i+1] = GradeRow{Base: decimal.NewFromInt(r[0]), Increment: decimal.NewFromInt(r[1])}
	}
	return &Table{
		defaultScale: DefaultScale,
		scales:       map[string]map[int]GradeRow{DefaultScale: rows},
	}
}

// =============================================================================
// YAML LOADING
// =============================================================================

type tableYAML struct {
	DefaultScale string                             `yaml:"default_scale"`
	Scales       map[string]map[string]gradeRowYAML `yaml:"scales"`
}

type gradeRowYAML struct {
	Base      int64 `yaml:"base"`
	Increment int64 `yaml:"increment"`
}

// ParseTable reads a YAML salary table.
func ParseTable(data []byte) (*Table, error) {
	var raw tableYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: salary table: %v", generic.ErrInvalidConfig, err)
	}
	if len(raw.Scales) == 0 {
		return nil, fmt.Errorf("%w: salary table has no scales", generic.ErrInvalidConfig)
	}

	t := &Table{scales: make(map[string]map[int]GradeRow, len(raw.Scales))}
	for name, grades := range raw.Scales {
		key := strings.ToUpper(strings.TrimSpace(name))
		rows := make(map[int]GradeRow, len(grades))
		for gl, row := range grades {
			g, err := strconv.Atoi(strings.TrimSpace(gl))
			if err != nil || g < 1 || g > 17 {
				return nil, fmt.Errorf("%w: scale %s: bad grade level %q", generic.ErrInvalidConfig, key, gl)
			}
			if row.Base <= 0 || row.Increment < 0 {
				return nil, fmt.Errorf("%w: scale %s GL %02d: base must be positive and increment non-negative", generic.ErrInvalidConfig, key, g)
			}
			rows[g] = GradeRow{Base: decimal.NewFromInt(row.Base), Increment: decimal.NewFromInt(row.Increment)}
		}
		t.scales[key] = rows
	}

	t.defaultScale = strings.ToUpper(strings.TrimSpace(raw.DefaultScale))
	if t.defaultScale == "" {
		if _, ok := t.scales[DefaultScale]; ok {
			t.defaultScale = DefaultScale
		} else {
			t.defaultScale = t.Scales()[0]
		}
	}
	if _, ok := t.scales[t.defaultScale]; !ok {
		return nil, fmt.Errorf("%w: default scale %s is not defined", generic.ErrInvalidConfig, t.defaultScale)
	}
	return t, nil
}

// LoadTable reads a YAML salary table from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("salary: read table %s: %w", path, err)
	}
	return ParseTable(data)
}
