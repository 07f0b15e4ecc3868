package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Limiter is a fixed-window counter keyed by caller identity. Windows
// reset lazily on the first request after expiry; a background janitor
// drops idle keys so the map does not grow unbounded.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	counts map[string]*windowCount
	stop   chan struct{}
}

type windowCount struct {
	count   int
	started time.Time
}

func New(max int, window time.Duration) *Limiter {
	l := &Limiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
		stop:   make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow reports whether a request for key fits in the current window.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.started) >= l.window {
		l.counts[key] = &windowCount{count: 1, started: now}
		return true
	}
	if wc.count >= l.max {
		return false
	}
	wc.count++
	return true
}

func (l *Limiter) Close() {
	close(l.stop)
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, wc := range l.counts {
				if now.Sub(wc.started) >= l.window {
					delete(l.counts, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware rejects over-limit requests with 429, keyed by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !l.Allow(key) {
			log.Warn().Str("ip", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", l.window.String())
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
