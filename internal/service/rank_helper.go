package service

import "github.com/lokadeal/lokadeal-backend/internal/dto"

// ApplyCompetitionRanks assigns competition ("1-1-3") ranks in place. rows
// must already be sorted by PeriodPoints descending: equal scores share a
// rank, and the next distinct score takes its 1-based position.
func ApplyCompetitionRanks(rows []dto.LeaderboardRow) {
	for i := range rows {
		if i > 0 && rows[i].PeriodPoints == rows[i-1].PeriodPoints {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
