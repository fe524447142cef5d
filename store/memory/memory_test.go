package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/store"
	"github.com/warp/personnel-audit/store/memory"
	"github.com/warp/personnel-audit/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return memory.New() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	// GIVEN: A stored employee with one certificate
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateEmployee(ctx, store.Employee{
		ID:       "emp-1",
		Snapshot: audit.Snapshot{Certificates: []audit.Certificate{{Type: "WAEC", Year: "2006"}}},
	}))

	// WHEN: The caller mutates what it read
	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	got.Snapshot.Certificates[0].Type = "tampered"

	// THEN: The stored record is unchanged
	again, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "WAEC", again.Snapshot.Certificates[0].Type)
}
