// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	httptypes "github.com/canonical/project-service/internal/http/types"
	"github.com/canonical/project-service/internal/logging"
)

const idleTTL = 5 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter is a token bucket per client IP.
type Limiter struct {
	perSecond rate.Limit
	burst     int

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time

	logger logging.LoggerInterface
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.perSecond, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now

	return b.lim.AllowN(now, 1)
}

// Middleware rejects callers that exceed their bucket with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !l.allow(ip) {
			l.logger.Warnf("rate limit exceeded for %s on %s", ip, r.URL.Path)
			httptypes.WriteJSON(w, http.StatusTooManyRequests, httptypes.Response{
				Success: false,
				Code:    "RATE_LIMITED",
				Message: "too many requests, try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP expects middleware.RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func NewLimiter(perSecond float64, burst int, logger logging.LoggerInterface) *Limiter {
	l := new(Limiter)
	l.perSecond = rate.Limit(perSecond)
	l.burst = burst
	l.buckets = make(map[string]*bucket)
	l.now = time.Now
	l.lastSweep = l.now()
	l.logger = logger

	return l
}
