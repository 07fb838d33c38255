package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"agenda/internal/eventbus"
	"agenda/internal/store"
	"agenda/pkg/logx"
)

// DefaultStorageKey is used when Config.StorageKey is empty.
const DefaultStorageKey = "agenda.state.v1"

// Notification types published on the bus after successful mutations.
const (
	EventTaskUpserted     = "task.upserted"
	EventTaskDeleted      = "task.deleted"
	EventEventCompleted   = "event.completed"
	EventEventUncompleted = "event.uncompleted"
)

// Change is the bus payload describing a successful mutation.
type Change struct {
	TaskID    string
	OutcomeID string
}

// Config controls the scheduler facade.
type Config struct {
	// StorageKey is the opaque key the state blob lives under. Distinct
	// keys give fully independent schedules over the same backend.
	StorageKey string
}

// Service is the scheduling facade. Construct with New, call Load
// once, then use the operation methods. The zero value is not usable.
type Service struct {
	mu sync.Mutex

	log logx.Logger
	kv  store.KV
	key string
	bus *eventbus.Bus

	state store.State

	now func() time.Time

	// Throttles repeated persistence-failure warnings so a dead disk
	// doesn't flood the log on every mutation.
	saveWarn *rate.Limiter
}

func New(kv store.KV, cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	key := cfg.StorageKey
	if key == "" {
		key = DefaultStorageKey
	}
	return &Service{
		log:      log.With(logx.String("comp", "scheduler")),
		kv:       kv,
		key:      key,
		bus:      eventbus.New(),
		now:      time.Now,
		saveWarn: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// SetClock overrides the time source. Test seam; call before use.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Load reads the persisted state once. A missing, unreadable, or
// corrupt blob never fails startup: the service starts empty and the
// returned error (a *store.ReadError) is informational only — it has
// already been handled.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := store.LoadState(ctx, s.kv, s.key)
	s.state = st
	if err != nil {
		s.log.Warn("stored state unreadable; starting empty", logx.String("key", s.key), logx.Err(err))
		return err
	}
	s.log.Debug("state loaded",
		logx.String("key", s.key),
		logx.Int("tasks", len(st.Tasks)),
		logx.Int("outcomes", len(st.Outcomes)))
	return nil
}

// Subscribe registers a listener invoked synchronously, in
// registration order, after every successful mutation. A panicking
// listener does not disturb the others or the mutating caller.
func (s *Service) Subscribe(fn func(eventbus.Event)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// saveLocked writes next without committing it. Call with s.mu held.
func (s *Service) saveLocked(ctx context.Context, next store.State) error {
	err := store.SaveState(ctx, s.kv, s.key, next)
	if err == nil {
		return nil
	}
	if s.saveWarn.Allow() {
		s.log.Warn("state save failed", logx.String("key", s.key), logx.Err(err))
	} else {
		s.log.Debug("state save failed", logx.String("key", s.key), logx.Err(err))
	}
	return err
}

func (s *Service) publish(typ string, ch Change) {
	s.bus.Publish(eventbus.Event{Type: typ, Time: s.now(), Data: ch})
}

// Snapshot reports current engine diagnostics.
type Snapshot struct {
	StorageKey string
	Persisted  bool
	Tasks      int
	Outcomes   int
	Listeners  int
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		StorageKey: s.key,
		Persisted:  s.kv != nil,
		Tasks:      len(s.state.Tasks),
		Outcomes:   len(s.state.Outcomes),
		Listeners:  s.bus.Len(),
	}
}
