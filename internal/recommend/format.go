// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

// Reason strings attached to recommendations by score band.
const (
	ReasonHighMatch    = "highly matches preferences"
	ReasonGenreMatch   = "matches favorite genres"
	ReasonSimilarLiked = "similar to liked books"
	ReasonPopular      = "popular among similar readers"
)

// Reason explains a score: >0.8, >0.6 and >0.4 map to progressively weaker matches.
func Reason(score float64) string {
	switch {
	case score > 0.8:
		return ReasonHighMatch
	case score > 0.6:
		return ReasonGenreMatch
	case score > 0.4:
		return ReasonSimilarLiked
	default:
		return ReasonPopular
	}
}

// formatRecommendations converts the first k ranked candidates into
// recommendations. The result is never nil.
func formatRecommendations(scored []ScoredBook, k int) []Recommendation {
	if k > len(scored) {
		k = len(scored)
	}

	recs := make([]Recommendation, 0, k)
	for _, sb := range scored[:k] {
		recs = append(recs, Recommendation{
			BookID: sb.BookID,
			Title:  sb.Title,
			Author: sb.Author,
			Genre:  sb.Genre,
			Score:  sb.Score,
			Reason: Reason(sb.Score),
		})
	}
	return recs
}
