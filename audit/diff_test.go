package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/personnel-audit/audit"
)

func TestDiffReasons(t *testing.T) {
	// GIVEN: A step violation was corrected and a retirement flag appeared
	before := []string{"ENTRY AGE: x", "STEP: step 16 exceeds maximum 15"}
	after := []string{"ENTRY AGE: x", "COMPULSORY RETIREMENT: y"}

	// WHEN: Diffed
	c := audit.DiffReasons(before, after)

	// THEN: One raised, one cleared, one carried over
	assert.True(t, c.Changed())
	assert.Equal(t, []string{"COMPULSORY RETIREMENT: y"}, c.Added)
	assert.Equal(t, []string{"STEP: step 16 exceeds maximum 15"}, c.Removed)
	assert.Equal(t, 1, c.Unchanged)
	assert.Contains(t, c.Unified, "+ COMPULSORY RETIREMENT: y\n")
	assert.Contains(t, c.Unified, "- STEP: step 16 exceeds maximum 15\n")
	assert.Contains(t, c.Unified, "  ENTRY AGE: x\n")
}

func TestDiffReasons_MovedIsUnchanged(t *testing.T) {
	c := audit.DiffReasons([]string{"A: 1", "B: 2"}, []string{"B: 2", "A: 1"})

	assert.False(t, c.Changed())
	assert.Equal(t, 2, c.Unchanged)
}

func TestDiffReasons_FromClean(t *testing.T) {
	c := audit.DiffReasons(nil, []string{"SUSPENSION: z"})
	assert.Equal(t, []string{"SUSPENSION: z"}, c.Added)
	assert.Empty(t, c.Removed)

	c = audit.DiffReasons(nil, nil)
	assert.False(t, c.Changed())
	assert.Empty(t, c.Unified)
}
