package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/utils"
)

// minLimiterIdle is the shortest time an unused client entry is kept.
const minLimiterIdle = 5 * time.Minute

// RateLimiter throttles credential submissions per client address with one
// token bucket per address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit rate.Limit
	burst int
	idle  time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute submissions per address, all of them
// usable as a burst. Entries idle for longer than idle are dropped by Sweep.
func NewRateLimiter(perMinute int, idle time.Duration) *RateLimiter {
	if idle < minLimiterIdle {
		idle = minLimiterIdle
	}

	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		idle:    idle,
	}
}

// Allow reports whether address may submit at now.
func (l *RateLimiter) Allow(address string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[address]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[address] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// Sweep drops addresses not seen since now minus the idle period and
// returns how many were removed.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for address, client := range l.clients {
		if now.Sub(client.lastSeen) > l.idle {
			delete(l.clients, address)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked addresses.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// withRateLimit rejects requests over the per-address budget with 429.
// It is a no-op when throttling is disabled.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := utils.ClientIP(r, h.trustProxy)
		if !h.limiter.Allow(address, time.Now()) {
			logger.FromRequest(r).Warn().Str("func", "*Handler.withRateLimit").Str("ip", address).Msg("too many credential submissions")
			writeError(w, http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
