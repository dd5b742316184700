package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordregistry/internal/record"
	"github.com/roach88/recordregistry/internal/testutil"
)

func TestState_StartsAtOne(t *testing.T) {
	s := NewState()
	assert.Equal(t, int64(1), s.NextID())
	assert.Equal(t, int64(0), s.Count())
}

func TestState_ApplyCreatedAndUpdated(t *testing.T) {
	s := NewState()
	at := testutil.DefaultStart

	require.NoError(t, s.Apply(record.NewCreated("e1", 1, alice, "a", at)))
	require.NoError(t, s.Apply(record.NewUpdated("e2", 1, "b", at.Add(5))))

	rec, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", rec.Data)
	assert.Equal(t, alice, rec.Owner)
	assert.Equal(t, record.Timestamp(at), rec.CreatedAt)
	assert.Equal(t, int64(2), s.NextID())
}

func TestState_ApplyRejectsInvariantViolations(t *testing.T) {
	at := testutil.DefaultStart
	cases := map[string]record.Event{
		"skipped id":     record.NewCreated("e", 2, alice, "a", at),
		"no owner":       record.NewCreated("e", 1, "", "a", at),
		"unknown update": record.NewUpdated("e", 1, "a", at),
		"unknown kind":   {Kind: "deleted", RecordID: 1},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewState()
			assert.ErrorIs(t, s.Apply(ev), ErrCorruptLog)
			assert.Equal(t, int64(1), s.NextID())
		})
	}
}

func TestState_CheckUpdate(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Apply(record.NewCreated("e1", 1, alice, "a", testutil.DefaultStart)))

	assert.NoError(t, s.CheckUpdate(alice, 1))
	assert.ErrorIs(t, s.CheckUpdate(mallory, 1), ErrNotOwner)
	assert.ErrorIs(t, s.CheckUpdate(alice, 2), ErrRecordNotFound)
}

func TestFixedGenerator_Sequential(t *testing.T) {
	g := NewFixedGenerator("evt")
	assert.Equal(t, "evt-1", g.Generate())
	assert.Equal(t, "evt-2", g.Generate())
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "NOT_OWNER: not the owner (record=3, caller=mallory)", notOwner(3, mallory).Error())
	assert.Equal(t, "RECORD_NOT_FOUND: record not found (record=9)", notFound(9).Error())
}
