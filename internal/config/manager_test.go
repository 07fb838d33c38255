package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleYAML = `
logging:
  level: debug
  console: true
storage:
  driver: sqlite
  path: ./agenda.db
  busy_timeout: 5s
scheduler:
  storage_key: study-a.state
seed:
  - id: walk
    title: Daily walk
    category: task
    start: "2024-01-01"
    repeat: daily@09:00
    policy: window:0..180
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "agenda.yaml", sampleYAML)

	m := NewManager(path)
	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NotNil(t, cfg.Storage)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "study-a.state", cfg.Scheduler.StorageKey)
	require.Len(t, cfg.Seed, 1)
	assert.Equal(t, "daily@09:00", cfg.Seed[0].Repeat)
	assert.Same(t, cfg, m.Get())
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "agenda.json",
		`{"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"scheduler":{}}`)

	cfg, err := NewManager(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Storage)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "agenda.yaml", "logging:\n  levl: debug\n")
	_, err := NewManager(path).Load()
	require.Error(t, err)
}

func TestLoadRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "agenda.json", `{"logging":{}}{"logging":{}}`)
	_, err := NewManager(path).Load()
	require.Error(t, err)
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()

	d, err := ParseDurationField("storage.busy_timeout", " 5s ")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = ParseDurationField("storage.busy_timeout", "")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = ParseDurationField("storage.busy_timeout", "-3s")
	require.Error(t, err)
	_, err = ParseDurationField("storage.busy_timeout", "nope")
	require.Error(t, err)

	d, err = ParseDurationOrDefault("storage.busy_timeout", "", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestWatchPublishesOnChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "agenda.yaml", sampleYAML)

	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Watch(ctx)
	}()

	// Give the watcher time to register before the write.
	time.Sleep(300 * time.Millisecond)
	writeFile(t, dir, "agenda.yaml", "logging:\n  level: warn\nscheduler:\n  storage_key: other\n")

	select {
	case cfg := <-ch:
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "other", cfg.Scheduler.StorageKey)
		assert.Equal(t, cfg, m.Get())
	case <-time.After(5 * time.Second):
		t.Fatal("no config published after file change")
	}

	cancel()
	<-done
}

func TestWatchSkipsInvalidAndUnchanged(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "agenda.yaml", sampleYAML)

	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)
	m.SetValidator(func(ctx context.Context, cfg *Config) error {
		return assert.AnError
	})

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	time.Sleep(300 * time.Millisecond)
	writeFile(t, dir, "agenda.yaml", "logging:\n  level: warn\nscheduler: {}\n")

	select {
	case <-ch:
		t.Fatal("rejected config must not be published")
	case <-time.After(time.Second):
	}
	// Previous config stays committed.
	assert.Equal(t, "debug", m.Get().Logging.Level)
}
