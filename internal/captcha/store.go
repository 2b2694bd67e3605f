package captcha

import (
	"sync"
	"time"
)

type challengeKey struct {
	sessionID string
	scope     string
}

type challenge struct {
	question  string
	answer    string
	expiresAt time.Time
}

// DefaultMaxChallenges is used when NewChallengeStore gets no positive limit.
const DefaultMaxChallenges = 10000

// ChallengeStore keeps pending math challenges in memory, keyed by session
// id and scope. Entries older than the TTL are invisible and get evicted by
// Sweep. At most maxEntries are held; a new key beyond that evicts the entry
// closest to expiry.
type ChallengeStore struct {
	mu         sync.Mutex
	items      map[challengeKey]challenge
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewChallengeStore creates an empty store whose entries live for ttl.
func NewChallengeStore(ttl time.Duration, maxEntries int) *ChallengeStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxChallenges
	}
	return &ChallengeStore{
		items:      make(map[challengeKey]challenge),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Put stores a challenge, replacing any pending one for the same key.
func (s *ChallengeStore) Put(sessionID, scope, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{sessionID, scope}
	if _, ok := s.items[key]; !ok && len(s.items) >= s.maxEntries {
		s.evictLocked()
	}

	s.items[key] = challenge{
		question:  question,
		answer:    answer,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Question returns the pending question without consuming it.
func (s *ChallengeStore) Question(sessionID, scope string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[challengeKey{sessionID, scope}]
	if !ok || !c.expiresAt.After(s.now()) {
		return "", false
	}
	return c.question, true
}

// Take removes the challenge and returns its expected answer.
// ok is false when nothing was pending or the entry had expired.
func (s *ChallengeStore) Take(sessionID, scope string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey{sessionID, scope}
	c, ok := s.items[key]
	delete(s.items, key)
	if !ok || !c.expiresAt.After(s.now()) {
		return "", false
	}
	return c.answer, true
}

// Sweep evicts expired entries and returns how many were removed.
func (s *ChallengeStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, c := range s.items {
		if !c.expiresAt.After(now) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// evictLocked makes room for one entry. Expired entries go first; when none
// are expired the entry closest to expiry is dropped.
func (s *ChallengeStore) evictLocked() {
	now := s.now()

	var (
		oldest    challengeKey
		oldestAt  time.Time
		found     bool
		hadExpiry bool
	)
	for key, c := range s.items {
		if !c.expiresAt.After(now) {
			delete(s.items, key)
			hadExpiry = true
			continue
		}
		if !found || c.expiresAt.Before(oldestAt) {
			oldest, oldestAt, found = key, c.expiresAt, true
		}
	}

	if !hadExpiry && found {
		delete(s.items, oldest)
	}
}

// Len returns the number of stored entries, expired ones included.
func (s *ChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
