package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newChecklist(n int) *DailyChecklist {
	c := &DailyChecklist{
		ScopedBase:      ScopedBase{FacilityID: primitive.NewObjectID()},
		SectionID:       primitive.NewObjectID(),
		FloorLocationID: primitive.NewObjectID(),
		Date:            time.Date(2026, 3, 14, 15, 4, 5, 0, time.Local),
	}
	for i := 0; i < n; i++ {
		c.Items = append(c.Items, ChecklistItem{Name: "task"})
	}
	c.Normalize()
	return c
}

func TestDeriveStatus(t *testing.T) {
	done := ChecklistItem{Name: "a", IsCompleted: true}
	open := ChecklistItem{Name: "b"}

	tests := []struct {
		name     string
		items    []ChecklistItem
		verified bool
		want     ChecklistStatus
	}{
		{"no items", nil, false, ChecklistPending},
		{"no items verified flag ignored", nil, true, ChecklistPending},
		{"none completed", []ChecklistItem{open, open}, false, ChecklistPending},
		{"some completed", []ChecklistItem{done, open}, false, ChecklistInProgress},
		{"all completed", []ChecklistItem{done, done}, false, ChecklistCompleted},
		{"all completed and verified", []ChecklistItem{done, done}, true, ChecklistVerified},
		{"partial with verification stays in progress", []ChecklistItem{done, open}, true, ChecklistInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.items, tt.verified))
		})
	}
}

func TestNormalizeTruncatesDate(t *testing.T) {
	c := newChecklist(1)
	assert.Equal(t, 0, c.Date.Hour())
	assert.Equal(t, 0, c.Date.Minute())
	assert.Equal(t, 14, c.Date.Day())
	assert.Equal(t, ChecklistPending, c.OverallStatus)
}

func TestCompleteItemAnyOrderReachesCompleted(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
	}
	at := time.Now()

	for _, order := range orders {
		c := newChecklist(4)
		users := make([]primitive.ObjectID, len(order))
		for i := range users {
			users[i] = primitive.NewObjectID()
		}

		for step, idx := range order {
			require.NoError(t, c.CompleteItem(idx, users[step], "", at))
			if step < len(order)-1 {
				assert.Equal(t, ChecklistInProgress, c.OverallStatus)
				assert.Nil(t, c.CompletedBy)
			}
		}

		assert.Equal(t, ChecklistCompleted, c.OverallStatus)
		require.NotNil(t, c.CompletedBy)
		assert.Equal(t, users[len(users)-1], *c.CompletedBy)
	}
}

func TestCompleteItemIsIdempotentPerItem(t *testing.T) {
	c := newChecklist(2)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	t0 := time.Now()

	require.NoError(t, c.CompleteItem(0, first, "mopped", t0))
	require.NoError(t, c.CompleteItem(0, second, "mopped again", t0.Add(time.Minute)))

	assert.Equal(t, ChecklistInProgress, c.OverallStatus)
	assert.Equal(t, "mopped again", c.Items[0].Notes)
	assert.Equal(t, second, *c.Items[0].CompletedBy)
	assert.True(t, c.Items[0].CompletedAt.Equal(t0.Add(time.Minute)))
}

func TestCompleteItemKeepsFirstCompleter(t *testing.T) {
	c := newChecklist(1)
	first := primitive.NewObjectID()
	require.NoError(t, c.CompleteItem(0, first, "", time.Now()))
	require.NoError(t, c.CompleteItem(0, primitive.NewObjectID(), "", time.Now()))

	assert.Equal(t, first, *c.CompletedBy)
}

func TestCompleteItemInvalidIndex(t *testing.T) {
	c := newChecklist(2)
	assert.ErrorIs(t, c.CompleteItem(2, primitive.NewObjectID(), "", time.Now()), ErrInvalidItemIndex)
	assert.ErrorIs(t, c.CompleteItem(-1, primitive.NewObjectID(), "", time.Now()), ErrInvalidItemIndex)

	empty := newChecklist(0)
	assert.ErrorIs(t, empty.CompleteItem(0, primitive.NewObjectID(), "", time.Now()), ErrInvalidItemIndex)
}

func TestVerify(t *testing.T) {
	supervisor := primitive.NewObjectID()

	t.Run("rejected while in progress", func(t *testing.T) {
		c := newChecklist(2)
		require.NoError(t, c.CompleteItem(0, primitive.NewObjectID(), "", time.Now()))
		assert.ErrorIs(t, c.Verify(supervisor, "", time.Now()), ErrNotCompleted)
		assert.Nil(t, c.VerifiedBy)
	})

	t.Run("rejected with zero items", func(t *testing.T) {
		c := newChecklist(0)
		assert.ErrorIs(t, c.Verify(supervisor, "", time.Now()), ErrNotCompleted)
	})

	t.Run("verified once", func(t *testing.T) {
		c := newChecklist(1)
		require.NoError(t, c.CompleteItem(0, primitive.NewObjectID(), "", time.Now()))
		require.NoError(t, c.Verify(supervisor, "looks good", time.Now()))

		assert.Equal(t, ChecklistVerified, c.OverallStatus)
		assert.Equal(t, supervisor, *c.VerifiedBy)
		assert.Equal(t, "looks good", c.VerificationNotes)

		assert.ErrorIs(t, c.Verify(primitive.NewObjectID(), "", time.Now()), ErrAlreadyVerified)
		assert.Equal(t, supervisor, *c.VerifiedBy)
	})
}

func TestNewChecklistStats(t *testing.T) {
	stats := NewChecklistStats(map[ChecklistStatus]int64{
		ChecklistPending:   2,
		ChecklistCompleted: 1,
		ChecklistVerified:  1,
	})

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(0), stats.ByStatus[ChecklistInProgress])
	assert.InDelta(t, 50.0, stats.Completion, 0.001)

	assert.Zero(t, NewChecklistStats(nil).Completion)
}
