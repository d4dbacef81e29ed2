package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// PrintLeaderboard outputs ranked entries, dispatching on the output format.
// The result limit bounds how many rows are shown; the stored tabs always
// hold the full board.
func PrintLeaderboard(entries []schema.LeaderboardEntry, cfg *contract.Config) error {
	if cfg.ResultLimit > 0 && len(entries) > cfg.ResultLimit {
		entries = entries[:cfg.ResultLimit]
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLeaderboardCSV(w, entries)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLeaderboardTable(w, entries, cfg)
		}, "table")
	}
}

// writeLeaderboardCSV emits the full 20-column layout.
func writeLeaderboardCSV(w io.Writer, entries []schema.LeaderboardEntry) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(schema.LeaderboardHeaders); err != nil {
		return err
	}
	for _, entry := range entries {
		m := entry.Metrics
		s := entry.Scores
		record := []string{
			strconv.Itoa(entry.Rank), entry.Username, s.Classification,
			floatCell(s.TotalScore), floatCell(s.Consistency), floatCell(s.Collaboration),
			floatCell(s.CodeVolume), floatCell(s.Quality),
			strconv.Itoa(m.ActiveDays), strconv.Itoa(m.TotalCommits),
			strconv.Itoa(m.PRsOpened), strconv.Itoa(m.PRsMerged),
			strconv.Itoa(m.LinesAdded), strconv.Itoa(m.LinesDeleted),
			strconv.Itoa(m.CommentsReceived), strconv.Itoa(m.CommentsGiven),
			contract.FormatMergeTime(m.AvgMergeTime), contract.FormatPercent(m.RejectionRate),
			m.LastActive, m.LastComment,
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// writeLeaderboardTable renders the human-readable console table. Line and
// comment counts are dropped and the last comment is truncated to the
// terminal width so rows stay scannable.
func writeLeaderboardTable(w io.Writer, entries []schema.LeaderboardEntry, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{
		"Rank", "Learner", "Classification", "Total", "Consist", "Collab",
		"Volume", "Quality", "Active", "Commits", "PRs", "Merged",
		"Merge Time", "Last Active", "Last Comment",
	})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	commentWidth := maxCommentWidth(cfg.Width)
	var data [][]string
	for _, entry := range entries {
		m := entry.Metrics
		s := entry.Scores
		label := s.Classification
		if cfg.UseColors {
			label = contract.GetColorLabel(s.Classification)
		}
		data = append(data, []string{
			strconv.Itoa(entry.Rank),
			entry.Username,
			label,
			floatCell(s.TotalScore),
			floatCell(s.Consistency),
			floatCell(s.Collaboration),
			floatCell(s.CodeVolume),
			floatCell(s.Quality),
			strconv.Itoa(m.ActiveDays),
			strconv.Itoa(m.TotalCommits),
			strconv.Itoa(m.PRsOpened),
			strconv.Itoa(m.PRsMerged),
			contract.FormatMergeTime(m.AvgMergeTime),
			m.LastActive,
			contract.TruncateComment(m.LastComment, commentWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d learners\n", len(entries))
	return err
}

// floatCell renders a score with one decimal place.
func floatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
