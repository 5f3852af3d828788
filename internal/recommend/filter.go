// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Filter decides whether a ranked candidate may be recommended.
// Filters run concurrently from several workers and must be safe for that.
type Filter interface {
	Keep(book Book, score float64) (bool, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(book Book, score float64) (bool, error)

// Keep implements Filter.
func (f FilterFunc) Keep(book Book, score float64) (bool, error) {
	return f(book, score)
}

// GenreFilter keeps books whose genre equals any of genres, ignoring case.
func GenreFilter(genres ...string) Filter {
	return FilterFunc(func(book Book, _ float64) (bool, error) {
		for _, g := range genres {
			if strings.EqualFold(book.Genre, g) {
				return true, nil
			}
		}
		return false, nil
	})
}

// AuthorFilter keeps books whose author contains any of names, ignoring case.
func AuthorFilter(names ...string) Filter {
	return FilterFunc(func(book Book, _ float64) (bool, error) {
		author := strings.ToLower(book.Author)
		for _, n := range names {
			if strings.Contains(author, strings.ToLower(n)) {
				return true, nil
			}
		}
		return false, nil
	})
}

// RatingRangeFilter keeps books with min <= rating <= max.
func RatingRangeFilter(minRating, maxRating float64) Filter {
	return FilterFunc(func(book Book, _ float64) (bool, error) {
		return book.Rating >= minRating && book.Rating <= maxRating, nil
	})
}

// YearRangeFilter keeps books published in [start, end].
func YearRangeFilter(start, end int) Filter {
	return FilterFunc(func(book Book, _ float64) (bool, error) {
		return book.Year >= start && book.Year <= end, nil
	})
}

// AllOf keeps a book only when every filter keeps it.
func AllOf(filters ...Filter) Filter {
	return FilterFunc(func(book Book, score float64) (bool, error) {
		for _, f := range filters {
			keep, err := f.Keep(book, score)
			if err != nil || !keep {
				return false, err
			}
		}
		return true, nil
	})
}

var (
	// filterEnv is shared by all expression filters; cel.Env is safe for concurrent use.
	filterEnv     *cel.Env
	filterEnvErr  error
	filterEnvOnce sync.Once
)

func getFilterEnv() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Variable("book", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("score", cel.DoubleType),
		)
	})
	return filterEnv, filterEnvErr
}

// ExprFilter evaluates a CEL expression against each candidate.
//
// Variables:
//   - book: map with id, title, author, genre (string), year (int), rating (double)
//   - score: the candidate's final score (double)
//
// Examples:
//
//	book.year >= 2000
//	book.genre == "Fantasy" && score > 0.4
//	book.author.contains("Le Guin") || book.rating >= 4.5
type ExprFilter struct {
	expr string
	prg  cel.Program
}

// CompileFilter compiles expr once; the result can be shared across batches.
func CompileFilter(expr string) (*ExprFilter, error) {
	env, err := getFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter %q: %w", expr, err)
	}
	return &ExprFilter{expr: expr, prg: prg}, nil
}

// CompileFilters compiles each expression, failing on the first invalid one.
func CompileFilters(exprs []string) ([]Filter, error) {
	filters := make([]Filter, 0, len(exprs))
	for _, expr := range exprs {
		f, err := CompileFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// String returns the source expression.
func (f *ExprFilter) String() string {
	return f.expr
}

// Keep implements Filter.
func (f *ExprFilter) Keep(book Book, score float64) (bool, error) {
	out, _, err := f.prg.Eval(map[string]interface{}{
		"book": map[string]interface{}{
			"id":     book.ID,
			"title":  book.Title,
			"author": book.Author,
			"genre":  book.Genre,
			"year":   int64(book.Year),
			"rating": book.Rating,
		},
		"score": score,
	})
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", f.expr, err)
	}

	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q must return bool, got %T", f.expr, out.Value())
	}
	return keep, nil
}

// applyFilters returns the candidates every filter keeps, preserving order.
// The input slice is never modified; it may be shared through the cache.
func applyFilters(snap *Snapshot, scored []ScoredBook, filters []Filter) ([]ScoredBook, error) {
	if len(filters) == 0 {
		return scored, nil
	}

	kept := make([]ScoredBook, 0, len(scored))
	for _, sb := range scored {
		book, ok := snap.Book(sb.BookID)
		if !ok {
			continue
		}

		keep := true
		for _, f := range filters {
			var err error
			if keep, err = f.Keep(book, sb.Score); err != nil {
				return nil, err
			}
			if !keep {
				break
			}
		}
		if keep {
			kept = append(kept, sb)
		}
	}
	return kept, nil
}
