package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

func TestReserveCapacityBoundedUnderConcurrency(t *testing.T) {
	store := NewTechnicianStore()
	tech := &domain.Technician{EmployeeID: "T-100", Name: "Tech T-100", Active: true, MaxLoad: 3}
	require.NoError(t, store.Create(context.Background(), tech))

	var wg sync.WaitGroup
	var reserved atomic.Int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.ReserveCapacity(context.Background(), tech.ID)
			assert.NoError(t, err)
			if ok {
				reserved.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), reserved.Load(), "reservations must stop at max_workload")
	current, err := store.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.CurrentLoad)
}

func TestDecrementWorkloadFloorsAtZero(t *testing.T) {
	store := NewTechnicianStore()
	tech := &domain.Technician{EmployeeID: "T-101", Name: "Tech T-101", Active: true, MaxLoad: 2}
	require.NoError(t, store.Create(context.Background(), tech))

	require.NoError(t, store.IncrementWorkload(context.Background(), tech.ID))
	require.NoError(t, store.DecrementWorkload(context.Background(), tech.ID))
	require.NoError(t, store.DecrementWorkload(context.Background(), tech.ID))

	current, err := store.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.CurrentLoad)
}

func TestUpdateDoesNotTouchWorkload(t *testing.T) {
	store := NewTechnicianStore()
	tech := &domain.Technician{EmployeeID: "T-102", Name: "Tech T-102", Active: true, MaxLoad: 5}
	require.NoError(t, store.Create(context.Background(), tech))
	require.NoError(t, store.IncrementWorkload(context.Background(), tech.ID))

	// A stale roster edit carries an old counter value; it must not win.
	stale, err := store.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	stale.CurrentLoad = 0
	stale.MaxLoad = 8
	require.NoError(t, store.Update(context.Background(), stale))

	current, err := store.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.CurrentLoad)
	assert.Equal(t, 8, current.MaxLoad)
}
