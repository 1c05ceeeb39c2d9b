package httpx

import (
	"golang.org/x/time/rate"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter: token bucket per client (IP setelah middleware.RealIP).
// Visitor yang idle lebih lama dari ExpiresIn dibuang.
type RateLimiter struct {
	Rate      rate.Limit
	Burst     int
	ExpiresIn time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
	now      func() time.Time
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
		visitors:  map[string]*visitor{},
		now:       time.Now,
	}
}

func (l *RateLimiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > l.ExpiresIn {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ExpiresIn {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[id]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.Rate, l.Burst)}
		l.visitors[id] = v
	}
	v.lastSeen = now
	return v.lim.AllowN(now, 1)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientID(r)) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientID(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
