// Package ratelimit implements a fixed-window request limiter on top of a
// shared counter store with TTL. The store's expiry is authoritative: an
// expired counter is indistinguishable from one that never existed.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CounterStore is the shared, possibly remote, counter collaborator.
// Increment must be atomic with respect to concurrent callers and must arm
// the TTL only on the first increment of a window.
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get reads the counter without mutating it. Absent keys report count 0.
	Get(ctx context.Context, key string) (count int64, ttl time.Duration, err error)
}

// FailMode decides the outcome when the counter store is unreachable.
type FailMode int

const (
	// FailOpen admits the request with a warning; used for low-risk actions
	// where limiter downtime must not deny the feature itself.
	FailOpen FailMode = iota
	// FailClosed denies the request; used for credential-sensitive actions.
	FailClosed
)

type Rule struct {
	Limit    int64
	Window   time.Duration
	FailMode FailMode
}

type Limiter struct {
	logger *slog.Logger
	store  CounterStore
	rules  map[string]Rule
}

func New(logger *slog.Logger, store CounterStore) *Limiter {
	return &Limiter{
		logger: logger.With(slog.String("component", "ratelimit")),
		store:  store,
		rules:  make(map[string]Rule),
	}
}

// Register binds a rule to an action namespace. Actions must be registered
// before use; Allow denies unknown actions outright.
func (l *Limiter) Register(action string, rule Rule) {
	l.rules[action] = rule
}

// Allow increments the window counter for (action, identifier) and reports
// whether the request is within the limit.
func (l *Limiter) Allow(ctx context.Context, action, identifier string) bool {
	rule, ok := l.rules[action]
	if !ok {
		l.logger.Warn("unregistered rate limit action", slog.String("action", action))
		return false
	}

	count, err := l.store.Increment(ctx, key(action, identifier), rule.Window)
	if err != nil {
		open := rule.FailMode == FailOpen
		l.logger.Warn("counter store unreachable",
			slog.String("action", action),
			slog.Bool("fail_open", open),
			slog.Any("error", err),
		)
		return open
	}

	allowed := count <= rule.Limit
	decisions.WithLabelValues(action, decisionLabel(allowed)).Inc()
	return allowed
}

// Inspect reads the current count and remaining TTL for a key without
// touching the counter. Operational debugging only.
func (l *Limiter) Inspect(ctx context.Context, action, identifier string) (int64, time.Duration, error) {
	return l.store.Get(ctx, key(action, identifier))
}

func key(action, identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", action, identifier)
}

func decisionLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
