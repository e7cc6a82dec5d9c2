package cartstore

import (
	"context"
	"sync"
)

// MemoryBackend is a process-local stand-in for the durable cart entry: one
// shared payload plus a change feed between the storages attached to it. It
// backs tests and the degraded in-memory-only mode used when Redis is
// unreachable; carts held here do not survive the process.
type MemoryBackend struct {
	mu       sync.Mutex
	data     []byte
	present  bool
	watchers map[*MemoryStorage]chan []byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		watchers: make(map[*MemoryStorage]chan []byte),
	}
}

// Storage attaches a new storage handle to the backend. Each handle counts
// as its own write origin: a handle never sees its own writes on Watch.
func (b *MemoryBackend) Storage() *MemoryStorage {
	return &MemoryStorage{backend: b}
}

// MemoryStorage is one party's handle on a MemoryBackend entry.
type MemoryStorage struct {
	backend *MemoryBackend
	mu      sync.Mutex
	closed  bool
}

func (s *MemoryStorage) Read(ctx context.Context) ([]byte, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.present {
		return nil, ErrNotFound
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (s *MemoryStorage) Write(ctx context.Context, data []byte) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make([]byte, len(data))
	copy(b.data, data)
	b.present = true
	for owner, ch := range b.watchers {
		if owner == s {
			continue
		}
		payload := make([]byte, len(data))
		copy(payload, data)
		select {
		case ch <- payload:
		default:
			// Slow watcher; it will catch up on the next write.
		}
	}
	return nil
}

func (s *MemoryStorage) Watch(ctx context.Context) (<-chan []byte, error) {
	b := s.backend
	ch := make(chan []byte, 8)
	b.mu.Lock()
	b.watchers[s] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if cur, ok := b.watchers[s]; ok && cur == ch {
			delete(b.watchers, s)
			close(ch)
		}
		b.mu.Unlock()
	}()

	return ch, nil
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	b := s.backend
	b.mu.Lock()
	if ch, ok := b.watchers[s]; ok {
		delete(b.watchers, s)
		close(ch)
	}
	b.mu.Unlock()
	return nil
}
