package models

import (
	"fmt"
	"strings"
	"time"
)

// RankingWindow is the trailing interval a leaderboard aggregates over
type RankingWindow string

const (
	WindowLastWeek  RankingWindow = "week"
	WindowLastMonth RankingWindow = "month"
	WindowAllTime   RankingWindow = "all"
)

// ParseRankingWindow maps external input onto a window; empty means last week
func ParseRankingWindow(s string) (RankingWindow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week", "lastweek", "last_week":
		return WindowLastWeek, nil
	case "month", "lastmonth", "last_month":
		return WindowLastMonth, nil
	case "all", "alltime", "all_time":
		return WindowAllTime, nil
	default:
		return "", fmt.Errorf("invalid window %q, must be one of: week, month, all", s)
	}
}

func (w RankingWindow) Valid() bool {
	return w == WindowLastWeek || w == WindowLastMonth || w == WindowAllTime
}

// Since returns the window's lower bound relative to now.
// The zero time is returned for all-time windows.
func (w RankingWindow) Since(now time.Time) time.Time {
	switch w {
	case WindowLastWeek:
		return now.AddDate(0, 0, -7)
	case WindowLastMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// ReadingEvent is the latest read of a story by one account
type ReadingEvent struct {
	AccountID         string    `json:"account_id"`
	StoryID           int64     `json:"story_id"`
	LastReadChapterID *int64    `json:"last_read_chapter_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Rating is one account's score for a story
type Rating struct {
	AccountID string    `json:"account_id"`
	StoryID   int64     `json:"story_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingAggregate is the average score and count of a story's ratings
type RatingAggregate struct {
	StoryID int64   `json:"story_id"`
	Average float64 `json:"average_score"`
	Count   int     `json:"total_ratings"`
}

// RatingSummary is the rating overview of a single story
type RatingSummary struct {
	StoryID      int64   `json:"story_id"`
	AverageScore float64 `json:"average_score"`
	TotalRatings int     `json:"total_ratings"`
}

// StoryReadCount is a story's distinct-reader count inside a window
type StoryReadCount struct {
	StoryID   int64 `json:"story_id"`
	ReadCount int   `json:"read_count"`
}

// TopStory is a ranked story by distinct readers
type TopStory struct {
	StorySummary
	ReadCount int `json:"read_count"`
}

// TopRatedStory is a ranked story by average score
type TopRatedStory struct {
	StorySummary
	AverageScore float64 `json:"average_score"`
	TotalRatings int     `json:"total_ratings"`
}

// Leaderboard limits
const (
	MinRankingLimit = 1
	MaxRankingLimit = 100
	MinScore        = 1
	MaxScore        = 5
)

// ReadRequest records that the caller read a story
type ReadRequest struct {
	LastReadChapterID *int64 `json:"last_read_chapter_id"`
}

// RatingRequest is the payload for scoring a story
type RatingRequest struct {
	Score int `json:"score" validate:"required,min=1,max=5"`
}

// ReadingHistoryEntry is one story in a reader's history, newest first
type ReadingHistoryEntry struct {
	StoryID           int64     `json:"story_id"`
	Title             string    `json:"title"`
	LastReadChapterID *int64    `json:"last_read_chapter_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FollowKind names what an account follows
type FollowKind string

const (
	FollowStory  FollowKind = "story"
	FollowAuthor FollowKind = "author"
)

func (k FollowKind) Valid() bool {
	return k == FollowStory || k == FollowAuthor
}

// Follow is one account following a story or an author
type Follow struct {
	AccountID string     `json:"account_id"`
	Kind      FollowKind `json:"kind"`
	TargetID  int64      `json:"target_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// FollowStatus answers whether an account follows a target
type FollowStatus struct {
	Kind      FollowKind `json:"kind"`
	TargetID  int64      `json:"target_id"`
	Following bool       `json:"is_following"`
}
