package service

import (
	"testing"

	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/stretchr/testify/assert"
)

func rowsWithPoints(points ...int) []dto.LeaderboardRow {
	rows := make([]dto.LeaderboardRow, len(points))
	for i, p := range points {
		rows[i].PeriodPoints = p
	}
	return rows
}

func ranksOf(rows []dto.LeaderboardRow) []int {
	ranks := make([]int, len(rows))
	for i, r := range rows {
		ranks[i] = r.Rank
	}
	return ranks
}

func TestApplyCompetitionRanks_NoTies(t *testing.T) {
	rows := rowsWithPoints(100, 90, 80)
	ApplyCompetitionRanks(rows)
	assert.Equal(t, []int{1, 2, 3}, ranksOf(rows))
}

func TestApplyCompetitionRanks_TiesShareRank(t *testing.T) {
	rows := rowsWithPoints(50, 50, 40)
	ApplyCompetitionRanks(rows)
	assert.Equal(t, []int{1, 1, 3}, ranksOf(rows))
}

func TestApplyCompetitionRanks_NextDistinctResumesAtPosition(t *testing.T) {
	rows := rowsWithPoints(100, 100, 80, 80, 80, 50)
	ApplyCompetitionRanks(rows)
	assert.Equal(t, []int{1, 1, 3, 3, 3, 6}, ranksOf(rows))
}

func TestApplyCompetitionRanks_AllTied(t *testing.T) {
	rows := rowsWithPoints(10, 10, 10, 10)
	ApplyCompetitionRanks(rows)
	assert.Equal(t, []int{1, 1, 1, 1}, ranksOf(rows))
}

func TestApplyCompetitionRanks_Empty(t *testing.T) {
	assert.NotPanics(t, func() { ApplyCompetitionRanks(nil) })
}
