package quiz

import (
	"sync"
	"time"
)

// Session is the per-user quiz state: the word currently being asked and the
// attempt/hint progress against it. At most one per user.
type Session struct {
	UserID    string
	Word      string
	Meaning   string
	Attempts  int
	HintGiven bool
	CreatedAt time.Time

	touchedAt time.Time
}

// PendingDeletion guards the destructive half of the delete-vocab flow: it
// is created when exactly one entry matches and consumed by the next message.
type PendingDeletion struct {
	UserID string
	Word   string
}

// SessionRepository holds the mutable per-user state. The default is an
// in-process map; an external cache can be substituted for multi-instance
// deployments.
type SessionRepository interface {
	Get(userID string) (*Session, bool)
	Put(s *Session)
	Delete(userID string)

	GetPending(userID string) (PendingDeletion, bool)
	PutPending(p PendingDeletion)
	DeletePending(userID string)

	// Counts reports (active sessions, pending deletions) for healthz.
	Counts() (int, int)

	// LockUser serializes message handling per user. The returned func
	// releases the lock.
	LockUser(userID string) func()
}

type MemoryRepository struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	pending  map[string]PendingDeletion

	locks sync.Map // userID -> *sync.Mutex
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		pending:  make(map[string]PendingDeletion),
	}
}

// Get returns the user's session if present and not idle-expired. Expiry is
// lazy: stale sessions are dropped on access, which keeps the map bounded
// without a background sweeper.
func (r *MemoryRepository) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	if r.ttl > 0 && r.now().Sub(s.touchedAt) > r.ttl {
		delete(r.sessions, userID)
		return nil, false
	}
	s.touchedAt = r.now()
	return s, true
}

func (r *MemoryRepository) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.touchedAt = r.now()
	r.sessions[s.UserID] = s
}

func (r *MemoryRepository) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

func (r *MemoryRepository) GetPending(userID string) (PendingDeletion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[userID]
	return p, ok
}

func (r *MemoryRepository) PutPending(p PendingDeletion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[p.UserID] = p
}

func (r *MemoryRepository) DeletePending(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, userID)
}

func (r *MemoryRepository) Counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ttl > 0 {
		cutoff := r.now().Add(-r.ttl)
		for id, s := range r.sessions {
			if s.touchedAt.Before(cutoff) {
				delete(r.sessions, id)
			}
		}
	}
	return len(r.sessions), len(r.pending)
}

func (r *MemoryRepository) LockUser(userID string) func() {
	v, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
