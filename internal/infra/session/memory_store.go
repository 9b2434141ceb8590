package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	cart      map[string]int
	userID    int64
	expiresAt time.Time
}

// 期限切れをまとめて消す間隔の上限
const maxSweepInterval = time.Minute

// MemoryStore はプロセス内にセッションを置く（単一プロセス・開発用）。
// 書き込みのついでに期限切れのセッションを掃除する。
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	data      map[string]*memoryEntry
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: map[string]*memoryEntry{},
	}
}

// 期限切れは消してnil。ロックを持って呼ぶ。
func (s *MemoryStore) entry(sessionID string) *memoryEntry {
	e, ok := s.data[sessionID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.data, sessionID)
		return nil
	}
	return e
}

func (s *MemoryStore) touch(sessionID string) *memoryEntry {
	s.sweep()
	e := s.entry(sessionID)
	if e == nil {
		e = &memoryEntry{cart: map[string]int{}}
		s.data[sessionID] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

// sweep は間隔を空けて全セッションの期限を見る。ロックを持って呼ぶ。
func (s *MemoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	interval := s.ttl
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	if now.Sub(s.lastSweep) < interval {
		return
	}
	s.lastSweep = now

	for id, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, id)
		}
	}
}

// Len は保持しているセッション数（期限切れ含む）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *MemoryStore) GetCart(_ context.Context, sessionID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]int{}
	if e := s.entry(sessionID); e != nil {
		for k, v := range e.cart {
			out[k] = v
		}
	}
	return out, nil
}

func (s *MemoryStore) SetCart(_ context.Context, sessionID string, cart map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//呼び出し側のmapを共有しない
	cp := make(map[string]int, len(cart))
	for k, v := range cart {
		cp[k] = v
	}
	s.touch(sessionID).cart = cp
	return nil
}

func (s *MemoryStore) GetUserID(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.entry(sessionID); e != nil {
		return e.userID, nil
	}
	return 0, nil
}

func (s *MemoryStore) SetUserID(_ context.Context, sessionID string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(sessionID).userID = userID
	return nil
}
