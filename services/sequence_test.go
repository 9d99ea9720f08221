package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSequenceLatestWins(t *testing.T) {
	seq := NewRequestSequence()
	first := seq.Next("s1/materials")
	second := seq.Next("s1/materials")
	other := seq.Next("s1/machines")

	assert.ErrorIs(t, seq.Check("s1/materials", first), ErrSuperseded)
	assert.NoError(t, seq.Check("s1/materials", second))
	assert.NoError(t, seq.Check("s1/machines", other))
	assert.Greater(t, second, first)

	seq.Forget("s1/materials")
	assert.False(t, seq.IsLatest("s1/materials", second))
}

func TestRequestSequenceForgetPrefix(t *testing.T) {
	seq := NewRequestSequence()
	seq.Next("s1:materials")
	seq.Next("s1:prices")
	kept := seq.Next("s2:materials")

	seq.ForgetPrefix("s1:")
	assert.Equal(t, 1, seq.Len())
	assert.True(t, seq.IsLatest("s2:materials", kept))
}

func TestLoadPage(t *testing.T) {
	res, err := LoadPage(context.Background(),
		func(context.Context) (int, error) { return 42, nil },
		func(context.Context) ([]string, error) { return []string{"a", "b"}, nil },
		nil)
	require.NoError(t, err)
	assert.Equal(t, 42, res.Total)
	assert.Equal(t, []string{"a", "b"}, res.Rows)
}

func TestLoadPageDegradesFailures(t *testing.T) {
	res, err := LoadPage(context.Background(),
		func(context.Context) (int, error) { return 0, errors.New("count failed") },
		func(context.Context) ([]string, error) { return []string{"a"}, nil },
		nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Rows)
}

func TestLoadPageCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadPage(ctx,
		func(ctx context.Context) (int, error) { return 0, ctx.Err() },
		func(ctx context.Context) ([]string, error) { return nil, ctx.Err() },
		nil)
	assert.ErrorIs(t, err, context.Canceled)
}
