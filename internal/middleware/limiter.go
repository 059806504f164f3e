package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"bladeshop-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Order placement and admin login
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Thank-you page status polling
	limitPolling = rate.Limit(20)
	burstPolling = 40

	// Gateway webhooks arrive in bursts from a few addresses
	limitWebhook = rate.Limit(100)
	burstWebhook = 200
)

const (
	visitorIdle     = 3 * time.Minute
	cleanupInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client and tier.
type RateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	trustProxy bool
}

// NewRateLimiter builds a limiter. With trustProxy the first
// X-Forwarded-For hop identifies the client instead of the peer address.
func NewRateLimiter(trustProxy bool) *RateLimiter {
	return &RateLimiter{
		visitors:   make(map[string]*visitor),
		trustProxy: trustProxy,
	}
}

// Run evicts idle visitors until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

func (l *RateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(l.visitors, key)
		}
	}
}

// getVisitor retrieves or creates the limiter for key.
func (l *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware answers 429 once a client exhausts its bucket for the tier
// the request falls into.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := resolveRateTier(r)

		// Same client, separate quotas per tier (e.g. "ip:1.2.3.4:strict").
		key := fmt.Sprintf("ip:%s:%s", l.clientIP(r), tier)

		if !l.getVisitor(key, limit, burst).Allow() {
			utils.WriteJSONError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) clientIP(r *http.Request) string {
	if l.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if strings.HasPrefix(r.URL.Path, "/webhooks/") {
		return limitWebhook, burstWebhook, "webhook"
	}

	if r.Method == http.MethodPost {
		switch r.URL.Path {
		case "/checkout", "/orders/manual", "/admin/login":
			return limitStrict, burstStrict, "strict"
		}
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/payments/") {
		return limitPolling, burstPolling, "polling"
	}

	return limitGeneral, burstGeneral, "general"
}
