// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FingerprintRatings digests the content of a ratings dataset.
// Order does not matter: rating order never changes a ranking.
func FingerprintRatings(ratings []Rating) uint64 {
	sorted := make([]Rating, len(ratings))
	copy(sorted, ratings)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.BookID != b.BookID {
			return a.BookID < b.BookID
		}
		return a.Value < b.Value
	})

	h := newHasher()
	h.putUint(uint64(len(sorted)))
	for _, r := range sorted {
		h.putString(r.UserID)
		h.putString(r.BookID)
		h.putUint(uint64(int64(r.Value)))
	}
	return h.Sum64()
}

// FingerprintCatalog digests the content of a catalog.
// Order matters: catalog position breaks score ties.
func FingerprintCatalog(catalog []Book) uint64 {
	h := newHasher()
	h.putUint(uint64(len(catalog)))
	for i := range catalog {
		b := &catalog[i]
		h.putString(b.ID)
		h.putString(b.Title)
		h.putString(b.Author)
		h.putString(b.Genre)
		h.putUint(uint64(int64(b.Year)))
		h.putUint(math.Float64bits(b.Rating))
	}
	return h.Sum64()
}

// Fingerprints returns the ratings and catalog digests.
func (s *Snapshot) Fingerprints() (ratings, catalog uint64) {
	return s.ratingsFP, s.catalogFP
}

// cacheKey identifies one user's ranking of depth entries over this snapshot.
func (s *Snapshot) cacheKey(userID string, depth int) string {
	var sb strings.Builder
	sb.Grow(len(userID) + 48)
	sb.WriteString(strconv.Itoa(len(userID)))
	sb.WriteByte(':')
	sb.WriteString(userID)
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(s.ratingsFP, 16))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(s.catalogFP, 16))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(depth))
	return sb.String()
}

// hasher writes length-prefixed fields so adjacent values cannot alias.
type hasher struct {
	*xxhash.Digest
	buf [8]byte
}

func newHasher() *hasher {
	return &hasher{Digest: xxhash.New()}
}

func (h *hasher) putUint(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.Write(h.buf[:])
}

func (h *hasher) putString(s string) {
	h.putUint(uint64(len(s)))
	_, _ = h.WriteString(s)
}
