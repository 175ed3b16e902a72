// Package bulk aggregates many backend pages of portfolio domains ahead of a
// client-side "select all" action, with strict separation between a user
// cancel and a mid-fetch network failure.
package bulk

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/grailsmarket/domainex/internal/domain"
)

// PageLister fetches one page of portfolio domains, reporting whether more
// pages follow.
type PageLister interface {
	DomainPage(ctx context.Context, page, pageSize int) ([]domain.DomainAsset, bool, error)
}

// Selection is the outcome of a select-all fetch. Partial is true when a
// network failure truncated the fetch; Err then carries the failure that
// callers surface as an explicit "partial selection" warning.
type Selection struct {
	Domains []domain.DomainAsset
	Partial bool
	Err     error
}

// Selector fetches every portfolio page in bounded-concurrency windows.
type Selector struct {
	lister      PageLister
	pageSize    int
	concurrency int
	logger      *slog.Logger
}

// NewSelector creates a Selector. pageSize and concurrency fall back to sane
// defaults when non-positive.
func NewSelector(lister PageLister, pageSize, concurrency int, logger *slog.Logger) *Selector {
	if pageSize <= 0 {
		pageSize = 50
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Selector{
		lister:      lister,
		pageSize:    pageSize,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "bulk")),
	}
}

// SelectAll fetches every page until the backend reports no more. The two
// failure paths are never conflated:
//
//   - A user-triggered cancel (the caller cancels ctx) discards all partial
//     results and returns domain.ErrSelectionCancelled: nothing is selected.
//   - A genuine network failure keeps the contiguous run of pages fetched
//     before the failure and returns them with Partial=true, no error.
//
// Pages within a window are fetched concurrently, but each page's error is
// tracked individually so one failed page does not poison its siblings'
// results.
func (s *Selector) SelectAll(ctx context.Context) (Selection, error) {
	var selected []domain.DomainAsset
	page := 0

	for {
		n := s.concurrency
		results := make([][]domain.DomainAsset, n)
		more := make([]bool, n)
		errs := make([]error, n)

		var g errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			p := page + i
			g.Go(func() error {
				results[i], more[i], errs[i] = s.lister.DomainPage(ctx, p, s.pageSize)
				return nil
			})
		}
		_ = g.Wait()

		// A cancelled parent context means the user backed out: select
		// nothing, regardless of what already arrived.
		if ctx.Err() != nil {
			return Selection{}, fmt.Errorf("bulk: %w", domain.ErrSelectionCancelled)
		}

		done := false
		for i := 0; i < n; i++ {
			if errs[i] != nil {
				s.logger.Warn("page fetch failed, returning partial selection",
					slog.Int("page", page+i),
					slog.String("error", errs[i].Error()),
				)
				return Selection{Domains: selected, Partial: true, Err: errs[i]}, nil
			}
			selected = append(selected, results[i]...)
			if !more[i] {
				done = true
				break
			}
		}
		if done {
			return Selection{Domains: selected}, nil
		}
		page += n
	}
}
