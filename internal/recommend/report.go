// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"sort"
	"time"
)

// Activity tier thresholds by total number of ratings.
const (
	HighActivityRatings   = 10
	MediumActivityRatings = 5

	// topListSize bounds PreferredGenres and TopRecommendedBooks.
	topListSize = 5
)

// BatchReport summarizes one GenerateReport call. It is not modified after
// it is returned.
type BatchReport struct {
	BatchID                string                      `json:"batch_id"`
	Timestamp              time.Time                   `json:"timestamp"`
	TotalProcessingTime    time.Duration               `json:"-"`
	TotalProcessingTimeMs  float64                     `json:"total_processing_time_ms"`
	UsersProcessed         int                         `json:"users_processed"`
	RecommendationsPerUser int                         `json:"recommendations_per_user"`
	TotalRecommendations   int                         `json:"total_recommendations"`
	Recommendations        map[string][]Recommendation `json:"recommendations"`
	PerformanceMetrics     PerformanceMetrics          `json:"performance_metrics"`
	UserStatistics         UserStatistics              `json:"user_statistics"`
	QualityMetrics         QualityMetrics              `json:"quality_metrics"`
	SystemMetrics          SystemMetrics               `json:"system_metrics"`
}

// ActivityLevels counts users per activity tier.
type ActivityLevels struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// GenreCount is a genre with the number of liked ratings it received.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// UserStatistics describes the rating behaviour of the batch's users.
type UserStatistics struct {
	ActivityLevels        ActivityLevels `json:"activity_levels"`
	AverageRatingsPerUser float64        `json:"average_ratings_per_user"`
	PreferredGenres       []GenreCount   `json:"preferred_genres"`
}

// BookCount is a book and the number of users it was recommended to.
type BookCount struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Count  int    `json:"count"`
}

// QualityMetrics describes the recommendations themselves.
type QualityMetrics struct {
	AverageScore        float64     `json:"average_score"`
	SuccessRate         float64     `json:"success_rate"`
	GenreDiversity      int         `json:"genre_diversity"`
	TopRecommendedBooks []BookCount `json:"top_recommended_books"`
}

// SystemMetrics carries throughput figures for the batch.
type SystemMetrics struct {
	CacheHitRatio     float64 `json:"cache_hit_ratio"`
	AverageUserTimeMs float64 `json:"average_user_time_ms"`
	Workers           int     `json:"workers"`
}

// countRecommendations sums per-user list lengths.
func countRecommendations(recs map[string][]Recommendation) int {
	total := 0
	for _, list := range recs {
		total += len(list)
	}
	return total
}

// summarizeUsers classifies users by activity and finds the genres they like.
// users must already be de-duplicated.
func summarizeUsers(users []string, snap *Snapshot) UserStatistics {
	stats := UserStatistics{PreferredGenres: []GenreCount{}}
	if len(users) == 0 {
		return stats
	}

	totalRatings := 0
	genreCounts := make(map[string]int)

	for _, userID := range users {
		ratings := snap.UserRatings(userID)
		totalRatings += len(ratings)

		switch {
		case len(ratings) >= HighActivityRatings:
			stats.ActivityLevels.High++
		case len(ratings) >= MediumActivityRatings:
			stats.ActivityLevels.Medium++
		default:
			stats.ActivityLevels.Low++
		}

		for _, r := range ratings {
			if r.Value < LikedThreshold {
				continue
			}
			if book, ok := snap.Book(r.BookID); ok {
				genreCounts[book.Genre]++
			}
		}
	}

	stats.AverageRatingsPerUser = float64(totalRatings) / float64(len(users))

	for genre, count := range genreCounts {
		stats.PreferredGenres = append(stats.PreferredGenres, GenreCount{Genre: genre, Count: count})
	}
	sort.Slice(stats.PreferredGenres, func(i, j int) bool {
		a, b := stats.PreferredGenres[i], stats.PreferredGenres[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Genre < b.Genre
	})
	if len(stats.PreferredGenres) > topListSize {
		stats.PreferredGenres = stats.PreferredGenres[:topListSize]
	}

	return stats
}

// analyzeQuality reduces the recommendation map without rescoring anything.
func analyzeQuality(recs map[string][]Recommendation) QualityMetrics {
	quality := QualityMetrics{TopRecommendedBooks: []BookCount{}}
	if len(recs) == 0 {
		return quality
	}

	var scoreSum float64
	scoreCount := 0
	nonEmpty := 0
	genres := make(map[string]struct{})
	books := make(map[string]*BookCount)

	for _, list := range recs {
		if len(list) > 0 {
			nonEmpty++
		}

		// A book counts once per user.
		seen := make(map[string]struct{}, len(list))
		for _, rec := range list {
			scoreSum += rec.Score
			scoreCount++
			genres[rec.Genre] = struct{}{}

			if _, dup := seen[rec.BookID]; dup {
				continue
			}
			seen[rec.BookID] = struct{}{}

			bc, ok := books[rec.BookID]
			if !ok {
				bc = &BookCount{BookID: rec.BookID, Title: rec.Title, Author: rec.Author, Genre: rec.Genre}
				books[rec.BookID] = bc
			}
			bc.Count++
		}
	}

	if scoreCount > 0 {
		quality.AverageScore = scoreSum / float64(scoreCount)
	}
	quality.SuccessRate = float64(nonEmpty) / float64(len(recs))
	quality.GenreDiversity = len(genres)

	for _, bc := range books {
		quality.TopRecommendedBooks = append(quality.TopRecommendedBooks, *bc)
	}
	sort.Slice(quality.TopRecommendedBooks, func(i, j int) bool {
		a, b := quality.TopRecommendedBooks[i], quality.TopRecommendedBooks[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.BookID < b.BookID
	})
	if len(quality.TopRecommendedBooks) > topListSize {
		quality.TopRecommendedBooks = quality.TopRecommendedBooks[:topListSize]
	}

	return quality
}
