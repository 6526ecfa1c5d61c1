// Package paginator splits ordered result sets into fixed-size pages.
//
// Pages are fetched lazily: a Paginator holds only the way to count and slice its
// source, nothing is queried until a page is requested.
package paginator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
)

// DefaultPageSize is the number of items on a listing page.
const DefaultPageSize = 10

// ErrInvalidPage is returned when page number is not a positive integer.
var ErrInvalidPage = errors.New("invalid page")

// ErrEmptyPage is returned when page number is beyond the last page.
var ErrEmptyPage = errors.New("empty page")

// Source is an ordered finite collection.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// SourceFuncs adapts a pair of functions to Source.
type SourceFuncs[T any] struct {
	CountFunc func(ctx context.Context) (int, error)
	SliceFunc func(ctx context.Context, offset, limit int) ([]T, error)
}

// Count ...
func (s SourceFuncs[T]) Count(ctx context.Context) (int, error) {
	return s.CountFunc(ctx)
}

// Slice ...
func (s SourceFuncs[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	return s.SliceFunc(ctx, offset, limit)
}

// Page ...
type Page[T any] struct {
	Items    []T
	Number   int
	Size     int
	Count    int
	NumPages int
}

// HasNext ...
func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

// HasPrevious ...
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// Paginator ...
type Paginator[T any] struct {
	src  Source[T]
	size int
}

// New creates a paginator over src. Non-positive size falls back to DefaultPageSize.
func New[T any](src Source[T], size int) *Paginator[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	return &Paginator[T]{
		src:  src,
		size: size,
	}
}

// PageSize ...
func (p *Paginator[T]) PageSize() int {
	return p.size
}

// Page returns page by its number (starting from 1).
// An empty source has a single empty page.
func (p *Paginator[T]) Page(ctx context.Context, number int) (*Page[T], error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, number)
	}

	count, err := p.src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}

	pages := numPages(count, p.size)
	if number > pages {
		return nil, fmt.Errorf("%w: %d", ErrEmptyPage, number)
	}

	return p.page(ctx, number, count, pages)
}

// GetPage is a lenient version of Page which accepts a raw page number.
// Malformed or non-positive numbers yield the first page, numbers beyond the last page
// yield the last one.
func (p *Paginator[T]) GetPage(ctx context.Context, raw string) (*Page[T], error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		number = 1
	}

	count, err := p.src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}

	pages := numPages(count, p.size)
	if number > pages {
		number = pages
	}

	return p.page(ctx, number, count, pages)
}

// All iterates over pages in order. Iteration stops on the first error.
// Every call starts from the first page again.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[*Page[T], error] {
	return func(yield func(*Page[T], error) bool) {
		for number := 1; ; number++ {
			page, err := p.Page(ctx, number)
			if err != nil {
				if errors.Is(err, ErrEmptyPage) {
					return
				}
				yield(nil, err)
				return
			}

			if !yield(page, nil) || !page.HasNext() {
				return
			}
		}
	}
}

func (p *Paginator[T]) page(ctx context.Context, number, count, pages int) (*Page[T], error) {
	out := &Page[T]{
		Number:   number,
		Size:     p.size,
		Count:    count,
		NumPages: pages,
	}

	if count == 0 {
		out.Items = []T{}
		return out, nil
	}

	items, err := p.src.Slice(ctx, (number-1)*p.size, p.size)
	if err != nil {
		return nil, fmt.Errorf("failed to get slice: %w", err)
	}
	out.Items = items

	return out, nil
}

func numPages(count, size int) int {
	if count == 0 {
		return 1
	}

	return (count + size - 1) / size
}

// FromSlice returns Source over in-memory slice.
func FromSlice[T any](items []T) Source[T] {
	return SourceFuncs[T]{
		CountFunc: func(context.Context) (int, error) {
			return len(items), nil
		},
		SliceFunc: func(_ context.Context, offset, limit int) ([]T, error) {
			if offset >= len(items) {
				return []T{}, nil
			}

			end := offset + limit
			if end > len(items) {
				end = len(items)
			}

			return items[offset:end], nil
		},
	}
}
