package dto

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardQuery is the raw query surface of the leaderboard endpoint.
type LeaderboardQuery struct {
	Period      string `form:"period"`
	Year        int    `form:"year"`
	Month       int    `form:"month"`
	From        string `form:"from"`
	To          string `form:"to"`
	Limit       int    `form:"limit"`
	IncludeSelf *bool  `form:"include_self"`
}

// PeriodInfo describes the resolved half-open window a leaderboard covers.
type PeriodInfo struct {
	Granularity  string    `json:"granularity"`
	Start        time.Time `json:"start"`
	EndExclusive time.Time `json:"end_exclusive"`
	Label        string    `json:"label"`
}

// LeaderboardRow is one ranked user. Rank uses competition ranking: equal
// scores share a rank and the next distinct score resumes at its 1-based
// position.
type LeaderboardRow struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         *string   `json:"name,omitempty"`
	PeriodPoints int       `json:"period_points"`
	TotalPoints  int       `json:"total_points"`
	Rank         int       `json:"rank"`
}

// LeaderboardSelf is the requesting user's own position. InTop reports
// whether the row was taken from the top list; Rank is 0 when the user has
// no points in the window.
type LeaderboardSelf struct {
	LeaderboardRow
	InTop bool `json:"in_top"`
}

type LeaderboardResponse struct {
	Period PeriodInfo       `json:"period"`
	Top    []LeaderboardRow `json:"top"`
	Me     *LeaderboardSelf `json:"me,omitempty"`
}
