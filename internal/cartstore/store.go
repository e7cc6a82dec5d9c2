package cartstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/farmavida/farmavida-backend/pkg/logger"
)

// DefaultDebounce is the quiet period between the last mutation and the
// durable write when no explicit interval is configured.
const DefaultDebounce = 300 * time.Millisecond

// writeTimeout bounds the background durable write.
const writeTimeout = 5 * time.Second

// Subscriber receives a copy of the snapshot after every change, local or
// external. Called on the mutating goroutine; keep it cheap.
type Subscriber func(lines []Line)

// Store owns the authoritative in-memory snapshot of one cart and keeps a
// durable copy eventually consistent with it.
//
// Mutations apply synchronously under the store mutex and schedule a
// debounced durable write: each mutation cancels any pending write and
// starts the interval over, so rapid edits coalesce into one write and
// intermediate states inside the window never persist. A watch goroutine
// adopts payloads written by other holders of the same durable entry.
//
// Storage failures never surface to callers; the store logs them and carries
// on in memory only.
type Store struct {
	session  string
	storage  Storage
	debounce time.Duration

	mu     sync.Mutex
	lines  []Line
	timer  *time.Timer
	subs   []Subscriber
	closed bool

	// persistMu serializes durable writes with Close, so no write can land
	// after Close returns.
	persistMu sync.Mutex

	cancelWatch context.CancelFunc
}

// New creates a store for one session over the given durable storage. The
// store takes ownership of the storage and closes it on Close. Call Hydrate
// before use.
func New(sessionID string, storage Storage, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Store{
		session:  sessionID,
		storage:  storage,
		debounce: debounce,
	}
}

// Hydrate loads the durable copy into memory and starts watching for
// external changes. An absent, unreadable or malformed durable copy yields
// an empty snapshot; hydration is never fatal.
func (s *Store) Hydrate(ctx context.Context) {
	var lines []Line

	data, err := s.storage.Read(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		// First visit in this session.
	case err != nil:
		logger.Warn("Failed to read durable cart, starting empty", map[string]interface{}{
			"session": s.session,
			"error":   err.Error(),
		})
	default:
		lines, err = decodeLines(data)
		if err != nil {
			logger.Warn("Durable cart is corrupt, starting empty", map[string]interface{}{
				"session": s.session,
				"error":   err.Error(),
			})
			lines = nil
		}
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancelWatch = cancel
	ch, err := s.storage.Watch(watchCtx)
	if err != nil {
		logger.Warn("Cart change feed unavailable, cross-session sync disabled", map[string]interface{}{
			"session": s.session,
			"error":   err.Error(),
		})
		return
	}
	go func() {
		for data := range ch {
			s.adoptExternal(data)
		}
	}()
}

// Add inserts a line, or merges quantities when the ID is already present.
// The incoming quantity is sanitized to an integer >= 1 first. Lines without
// an ID are ignored.
func (s *Store) Add(line Line) {
	if line.ID == "" {
		logger.Warn("Ignoring cart line without an ID", map[string]interface{}{
			"session": s.session,
			"name":    line.Name,
		})
		return
	}
	line.Quantity = sanitizeQuantity(float64(line.Quantity))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if i := s.indexOf(line.ID); i >= 0 {
		s.lines[i].Quantity += line.Quantity
	} else {
		s.lines = append(s.lines, line)
	}
	s.schedulePersistLocked()
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Remove deletes the line with the given ID. Absent IDs are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.schedulePersistLocked()
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties the snapshot and schedules a durable write of the empty
// collection. Clearing an already empty cart is harmless.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lines = nil
	s.schedulePersistLocked()
	s.mu.Unlock()

	s.notify([]Line{})
}

// SetQuantity sets the line's quantity to max(1, truncate(quantity)).
// A requested quantity below 1 leaves the stored quantity untouched:
// removal is explicit, never a quantity underflow.
func (s *Store) SetQuantity(id string, quantity float64) {
	if quantity < 1 {
		return
	}
	q := sanitizeQuantity(quantity)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity = q
	s.schedulePersistLocked()
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// IncreaseQuantity raises the line's quantity by max(1, truncate(delta)).
func (s *Store) IncreaseQuantity(id string, delta float64) {
	s.adjustQuantity(id, sanitizeQuantity(delta))
}

// DecreaseQuantity lowers the line's quantity by max(1, truncate(delta)),
// clamping at a floor of 1. It never removes the line.
func (s *Store) DecreaseQuantity(id string, delta float64) {
	s.adjustQuantity(id, -sanitizeQuantity(delta))
}

func (s *Store) adjustQuantity(id string, delta int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	q := s.lines[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	s.lines[i].Quantity = q
	s.schedulePersistLocked()
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Total returns the sum of price x quantity over all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the current snapshot.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

// Subscribe registers a hook called with a snapshot copy after every change.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Close cancels any pending durable write and the change watcher, then
// closes the storage. No side effects happen after Close returns; closing
// twice is fine.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	// A flush may have already passed the closed check; wait it out.
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	if err := s.storage.Close(); err != nil {
		logger.Warn("Failed to close cart storage", map[string]interface{}{
			"session": s.session,
			"error":   err.Error(),
		})
	}
}

// adoptExternal replaces the in-memory snapshot with a payload written by
// another holder of the same durable entry, after the usual sanitization.
// A payload that is not a line array resets the cart to empty.
func (s *Store) adoptExternal(data []byte) {
	lines, err := decodeLines(data)
	if err != nil {
		logger.Warn("External cart payload is malformed, resetting to empty", map[string]interface{}{
			"session": s.session,
			"error":   err.Error(),
		})
		lines = nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lines = lines
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	logger.Debug("Adopted externally written cart", map[string]interface{}{
		"session": s.session,
		"lines":   len(snapshot),
	})
	s.notify(snapshot)
}

// schedulePersistLocked cancels any pending write and starts the debounce
// interval over. Caller holds s.mu. At most one write is ever pending.
func (s *Store) schedulePersistLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// flush writes the snapshot as of now. Runs on the timer goroutine; write
// failures are logged and the session continues in memory only. persistMu is
// held across the write so a concurrent Close waits for it to finish.
func (s *Store) flush() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	data := encodeLines(s.lines)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.storage.Write(ctx, data); err != nil {
		logger.Error("Failed to persist cart, continuing in memory only", err, map[string]interface{}{
			"session": s.session,
		})
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLinesLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) notify(snapshot []Line) {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}
