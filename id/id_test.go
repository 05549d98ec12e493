package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	at := time.Now()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New(at).String()
	}
	assert.True(t, sort.StringsAreSorted(ids))
	assert.Len(t, ids[0], 26)
}

func TestStarted(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 9, 30, 0, 125_000_000, time.UTC)
	r := New(at)
	assert.True(t, r.Started().Equal(at))
	assert.False(t, r.IsZero())
	assert.True(t, RunID{}.IsZero())
}

func TestParse(t *testing.T) {
	t.Parallel()

	r := New(time.Now())
	got, err := Parse(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = Parse("not-a-ulid")
	assert.Error(t, err)
}
