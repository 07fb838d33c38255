package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/schedule"
	"agenda/pkg/logx"
)

func sampleState() State {
	return State{
		Tasks: []schedule.Task{{
			ID:       "hydration",
			Title:    "Drink water",
			Category: schedule.CategoryReminder,
			Schedule: schedule.Schedule{
				StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Recurrence: schedule.Daily{Hour: 9, Minute: 0},
			},
			CompletionPolicy: schedule.Anytime{},
			CreatedAt:        time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		}},
		Outcomes: []schedule.Outcome{{
			ID:          "hydration#0@2024-01-01T09:00:00Z",
			CompletedAt: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			Data:        map[string]any{"ml": float64(250)},
		}},
	}
}

func TestStateRoundTripDrivers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	drivers := []Config{
		{Driver: "file", Path: filepath.Join(dir, "blobs")},
		{Driver: "sqlite", Path: filepath.Join(dir, "agenda.db"), BusyTimeout: time.Second},
		{Driver: "memory"},
	}
	for _, cfg := range drivers {
		cfg := cfg
		t.Run(cfg.Driver, func(t *testing.T) {
			kv, err := Open(cfg, logx.Nop())
			require.NoError(t, err)
			require.NotNil(t, kv)
			defer kv.Close()

			ctx := context.Background()
			key := "agenda.state.v1"

			st, err := LoadState(ctx, kv, key)
			require.NoError(t, err)
			assert.Empty(t, st.Tasks)

			want := sampleState()
			require.NoError(t, SaveState(ctx, kv, key, want))

			got, err := LoadState(ctx, kv, key)
			require.NoError(t, err)
			require.Len(t, got.Tasks, 1)
			assert.Equal(t, want.Tasks[0], got.Tasks[0])
			require.Len(t, got.Outcomes, 1)
			assert.Equal(t, want.Outcomes[0], got.Outcomes[0])
		})
	}
}

func TestOpenDisabledAndUnknown(t *testing.T) {
	t.Parallel()
	kv, err := Open(Config{}, logx.Nop())
	require.NoError(t, err)
	assert.Nil(t, kv)

	kv, err = Open(Config{Driver: "none"}, logx.Nop())
	require.NoError(t, err)
	assert.Nil(t, kv)

	_, err = Open(Config{Driver: "redis"}, logx.Nop())
	assert.Error(t, err)
}

func TestLoadStateRecoversFromCorruptBlob(t *testing.T) {
	t.Parallel()
	kv := NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, "k", []byte("{not json")))

	st, err := LoadState(ctx, kv, "k")
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "k", readErr.Key)
	// Recovered: the state is empty but usable.
	assert.Empty(t, st.Tasks)
	assert.Empty(t, st.Outcomes)
}

func TestSaveStatePropagatesWriteFailure(t *testing.T) {
	t.Parallel()
	kv := NewMemory()
	boom := errors.New("disk full")
	kv.FailWrites(boom)

	err := SaveState(context.Background(), kv, "k", sampleState())
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.ErrorIs(t, err, boom)
}

func TestNilKVIsMemoryOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, err := LoadState(ctx, nil, "k")
	require.NoError(t, err)
	assert.Empty(t, st.Tasks)
	assert.NoError(t, SaveState(ctx, nil, "k", sampleState()))
}

func TestFileDriverAtomicOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	kv, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "weird/key with spaces", []byte(`{"tasks":null,"outcomes":null}`)))
	b, ok, err := kv.Get(ctx, "weird/key with spaces")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"tasks":null,"outcomes":null}`, string(b))

	// No stray tmp files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
