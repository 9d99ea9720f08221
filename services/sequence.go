package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned when a newer request for the same grid was issued
// before this one completed. Its result must be discarded.
var ErrSuperseded = errors.New("request superseded by a newer one")

// RequestSequence issues monotonically increasing tickets per key (one key
// per session and grid). Only the holder of the latest ticket may apply its
// result.
type RequestSequence struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewRequestSequence() *RequestSequence {
	return &RequestSequence{latest: make(map[string]uint64)}
}

func (s *RequestSequence) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key]++
	return s.latest[key]
}

func (s *RequestSequence) IsLatest(key string, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == ticket
}

// Check returns ErrSuperseded unless ticket is still the latest for key.
func (s *RequestSequence) Check(key string, ticket uint64) error {
	if !s.IsLatest(key, ticket) {
		return ErrSuperseded
	}
	return nil
}

// Forget drops the counter of key.
func (s *RequestSequence) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, key)
}

// ForgetPrefix drops every counter whose key starts with prefix, e.g. all
// grids of an expired session.
func (s *RequestSequence) ForgetPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.latest {
		if strings.HasPrefix(key, prefix) {
			delete(s.latest, key)
		}
	}
}

// Len is the number of tracked keys.
func (s *RequestSequence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}

// PageResult is one page of a grid plus the total row count of its filter.
type PageResult[T any] struct {
	Total int
	Rows  []T
}

// LoadPage runs the count and row queries concurrently. A failed read
// degrades to an empty page; only cancellation of ctx is returned as an
// error.
func LoadPage[T any](
	ctx context.Context,
	count func(context.Context) (int, error),
	rows func(context.Context) ([]T, error),
	log logrus.FieldLogger,
) (PageResult[T], error) {
	var res PageResult[T]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return err
		}
		res.Total = n
		return nil
	})
	g.Go(func() error {
		r, err := rows(gctx)
		if err != nil {
			return err
		}
		res.Rows = r
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return PageResult[T]{}, ctx.Err()
		}
		if log != nil {
			log.WithError(err).Warn("page load failed, showing no data")
		}
		return PageResult[T]{}, nil
	}
	return res, nil
}
