// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Scoring constants. These are fixed so that rankings are deterministic.
const (
	// AuthorWeight is added to similarity when the author is preferred.
	AuthorWeight = 2.0

	// GenreWeight is added to similarity when the genre is preferred.
	GenreWeight = 1.5

	// SimilarityNormalizer scales raw similarity into [0, 1].
	SimilarityNormalizer = AuthorWeight + GenreWeight

	// SimilarityWeight is the share of the final score taken by similarity.
	SimilarityWeight = 0.7

	// RatingWeight is the share of the final score taken by the catalog rating.
	RatingWeight = 0.3

	// MaxBookRating is the top of the catalog rating scale.
	MaxBookRating = 5.0

	// LikedThreshold is the minimum rating value that feeds the user profile.
	LikedThreshold = 4

	// DefaultK is the number of results returned when no k is given.
	DefaultK = 10
)

// Snapshot is an indexed, fingerprinted, read-only view over one ratings
// dataset and one catalog. Build it once per batch (or once per dataset
// when the same data recurs) and share it across workers.
type Snapshot struct {
	catalog       []Book
	bookIndex     map[string]int
	ratingsByUser map[string][]Rating

	ratingsFP uint64
	catalogFP uint64

	// invalid holds the catalog indices of malformed entries, which are never ranked.
	invalid      map[int]struct{}
	invalidBooks []error
}

// NewSnapshot indexes ratings and catalog. Neither slice is modified or retained
// beyond read-only access.
func NewSnapshot(ratings []Rating, catalog []Book) *Snapshot {
	s := &Snapshot{
		catalog:       catalog,
		bookIndex:     make(map[string]int, len(catalog)),
		ratingsByUser: make(map[string][]Rating),
		ratingsFP:     FingerprintRatings(ratings),
		catalogFP:     FingerprintCatalog(catalog),
	}

	for i := range catalog {
		b := &catalog[i]
		if _, exists := s.bookIndex[b.ID]; !exists {
			s.bookIndex[b.ID] = i
		}
		if !validBookRating(b.Rating) {
			if s.invalid == nil {
				s.invalid = make(map[int]struct{})
			}
			s.invalid[i] = struct{}{}
			s.invalidBooks = append(s.invalidBooks, fmt.Errorf("%w: book %s has rating %v", ErrInvalidBook, b.ID, b.Rating))
		}
	}

	for _, r := range ratings {
		s.ratingsByUser[r.UserID] = append(s.ratingsByUser[r.UserID], r)
	}

	return s
}

func validBookRating(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= MaxBookRating
}

// InvalidBooks reports the catalog entries excluded from ranking, each
// wrapping ErrInvalidBook. It returns nil when the catalog is clean.
func (s *Snapshot) InvalidBooks() error {
	return errors.Join(s.invalidBooks...)
}

// InvalidBookCount returns the number of catalog entries excluded from ranking.
func (s *Snapshot) InvalidBookCount() int {
	return len(s.invalidBooks)
}

// Book returns the catalog entry for id.
func (s *Snapshot) Book(id string) (Book, bool) {
	idx, ok := s.bookIndex[id]
	if !ok {
		return Book{}, false
	}
	return s.catalog[idx], true
}

// UserRatings returns every rating made by userID. The slice must not be modified.
func (s *Snapshot) UserRatings(userID string) []Rating {
	return s.ratingsByUser[userID]
}

// Profile builds the user's profile from their ratings.
// Ratings referring to books missing from the catalog still exclude that
// book but contribute no author or genre.
func (s *Snapshot) Profile(userID string) (UserProfile, error) {
	profile := UserProfile{
		PreferredAuthors: make(map[string]struct{}),
		PreferredGenres:  make(map[string]struct{}),
		RatedBookIDs:     make(map[string]struct{}),
	}

	for _, r := range s.ratingsByUser[userID] {
		if r.Value < 1 || r.Value > 5 {
			return UserProfile{}, fmt.Errorf("%w: book %s has value %d", ErrInvalidRating, r.BookID, r.Value)
		}
		profile.RatedBookIDs[r.BookID] = struct{}{}

		if r.Value < LikedThreshold {
			continue
		}
		if book, ok := s.Book(r.BookID); ok {
			profile.PreferredAuthors[book.Author] = struct{}{}
			profile.PreferredGenres[book.Genre] = struct{}{}
		}
	}

	return profile, nil
}

// Score ranks every unrated, well-formed catalog book for userID and
// returns the top k (DefaultK when k <= 0). Ties keep catalog order.
func (s *Snapshot) Score(userID string, k int) ([]ScoredBook, error) {
	if k <= 0 {
		k = DefaultK
	}

	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredBook, 0, len(s.catalog))
	for i := range s.catalog {
		book := &s.catalog[i]
		if _, rated := profile.RatedBookIDs[book.ID]; rated {
			continue
		}
		if _, bad := s.invalid[i]; bad {
			continue
		}
		scored = append(scored, ScoredBook{
			BookID: book.ID,
			Title:  book.Title,
			Author: book.Author,
			Genre:  book.Genre,
			Score:  bookScore(&profile, book),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// bookScore blends normalized author/genre similarity with the catalog rating.
func bookScore(profile *UserProfile, book *Book) float64 {
	similarity := 0.0
	if _, ok := profile.PreferredAuthors[book.Author]; ok {
		similarity += AuthorWeight
	}
	if _, ok := profile.PreferredGenres[book.Genre]; ok {
		similarity += GenreWeight
	}
	similarity /= SimilarityNormalizer

	return similarity*SimilarityWeight + (book.Rating/MaxBookRating)*RatingWeight
}

// Score is the standalone scoring function: it ranks catalog books for
// userID from the given ratings and returns the top k. It has no side effects.
func Score(userID string, ratings []Rating, catalog []Book, k int) ([]ScoredBook, error) {
	return NewSnapshot(ratings, catalog).Score(userID, k)
}
