package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// BuildLeaderboard fetches all-time metrics for every learner, scores them,
// and returns entries ranked by total score descending.
func BuildLeaderboard(ctx context.Context, client contract.ActivityClient, learners []schema.Learner, baseData map[string]BaseRepoData, cfg schema.ScoreConfig, now time.Time) []schema.LeaderboardEntry {
	entries := make([]schema.LeaderboardEntry, 0, len(learners))
	for _, learner := range learners {
		metrics := FetchLearnerAllTime(ctx, client, learner, baseData, cfg, now)
		entries = append(entries, schema.LeaderboardEntry{
			Username: learner.Username,
			Metrics:  metrics,
			Scores:   ComputeScores(metrics, cfg, now),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Scores.TotalScore > entries[j].Scores.TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// EntryCells renders one leaderboard entry in the 20-column tab layout, with
// merge time and rejection rate already formatted for humans.
func EntryCells(entry schema.LeaderboardEntry) []string {
	m := entry.Metrics
	s := entry.Scores
	return []string{
		strconv.Itoa(entry.Rank),
		entry.Username,
		s.Classification,
		formatScore(s.TotalScore),
		formatScore(s.Consistency),
		formatScore(s.Collaboration),
		formatScore(s.CodeVolume),
		formatScore(s.Quality),
		strconv.Itoa(m.ActiveDays),
		strconv.Itoa(m.TotalCommits),
		strconv.Itoa(m.PRsOpened),
		strconv.Itoa(m.PRsMerged),
		strconv.Itoa(m.LinesAdded),
		strconv.Itoa(m.LinesDeleted),
		strconv.Itoa(m.CommentsReceived),
		strconv.Itoa(m.CommentsGiven),
		contract.FormatMergeTime(m.AvgMergeTime),
		contract.FormatPercent(m.RejectionRate),
		m.LastActive,
		m.LastComment,
	}
}

// EntriesToCells renders a full leaderboard for a ClearAndWrite call.
func EntriesToCells(entries []schema.LeaderboardEntry) [][]string {
	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = EntryCells(entry)
	}
	return rows
}

// ParseLeaderboard reads stored leaderboard cells back into entries. Only the
// fields needed downstream (rank, name, scores, counts, last active) are
// recovered; the formatted merge time and rejection rate stay display-only.
// Rows are padded to the full column count before parsing: the Sheets values
// API omits trailing empty cells, so a learner without a last comment reads
// back as a 19-cell row.
func ParseLeaderboard(grid [][]string) ([]schema.LeaderboardEntry, error) {
	var entries []schema.LeaderboardEntry
	for i, cells := range grid {
		if i == 0 {
			continue
		}
		if len(cells) < 2 || cells[1] == "" {
			return nil, fmt.Errorf("leaderboard row %d has no username", i)
		}
		if len(cells) < len(schema.LeaderboardHeaders) {
			padded := make([]string, len(schema.LeaderboardHeaders))
			copy(padded, cells)
			cells = padded
		}
		entry := schema.LeaderboardEntry{
			Username: cells[1],
			Metrics: schema.AllTimeMetrics{
				ActiveDays:       atoiOr0(cells[8]),
				TotalCommits:     atoiOr0(cells[9]),
				PRsOpened:        atoiOr0(cells[10]),
				PRsMerged:        atoiOr0(cells[11]),
				LinesAdded:       atoiOr0(cells[12]),
				LinesDeleted:     atoiOr0(cells[13]),
				CommentsReceived: atoiOr0(cells[14]),
				CommentsGiven:    atoiOr0(cells[15]),
				LastActive:       cells[18],
				LastComment:      cells[19],
			},
			Scores: schema.ScoreResult{
				TotalScore:     parseFloatOr0(cells[3]),
				Consistency:    parseFloatOr0(cells[4]),
				Collaboration:  parseFloatOr0(cells[5]),
				CodeVolume:     parseFloatOr0(cells[6]),
				Quality:        parseFloatOr0(cells[7]),
				Classification: cells[2],
			},
		}
		entry.Rank = atoiOr0(cells[0])
		entries = append(entries, entry)
	}
	return entries, nil
}

func atoiOr0(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOr0(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
