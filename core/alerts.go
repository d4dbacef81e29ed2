package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cohortpulse/cohortpulse/schema"
)

// EvaluateAlerts flags learners as INACTIVE, AT RISK and/or DECLINING from
// ledger recency plus leaderboard scores. A learner can trigger several
// categories at once; DECLINING is suppressed when INACTIVE already fired,
// since both point at the same root cause.
func EvaluateAlerts(entries []schema.LeaderboardEntry, rows []schema.DailyRow, cfg schema.ScoreConfig, now time.Time) []schema.Alert {
	today := now.UTC()
	inactiveCutoff := today.AddDate(0, 0, -cfg.InactiveThresholdDays).Format(schema.DateFormat)
	weekCutoff := today.AddDate(0, 0, -7).Format(schema.DateFormat)

	lastActiveByUser := make(map[string]string)
	recentActiveDays := make(map[string]int)
	for _, row := range rows {
		if !row.HasActivity() {
			continue
		}
		key := strings.ToLower(row.Username)
		if row.Date > lastActiveByUser[key] {
			lastActiveByUser[key] = row.Date
		}
		if row.Date >= weekCutoff {
			recentActiveDays[key]++
		}
	}

	var alerts []schema.Alert
	for _, entry := range entries {
		key := strings.ToLower(entry.Username)
		score := entry.Scores.TotalScore

		lastActive := lastActiveByUser[key]
		if lastActive == "" {
			lastActive = entry.Metrics.LastActive
		}
		if lastActive == "" {
			lastActive = "Never"
		}

		var triggered []schema.Alert
		add := func(alertType, details string) {
			triggered = append(triggered, schema.Alert{
				Username:   entry.Username,
				Type:       alertType,
				Details:    details,
				LastActive: lastActive,
				Score:      score,
			})
		}

		inactive := lastActive == "Never" || lastActive == "N/A" || lastActive <= inactiveCutoff
		if inactive {
			add(schema.AlertInactive, fmt.Sprintf("No activity in %d+ days", cfg.InactiveThresholdDays))
		}

		if score < cfg.AtRiskScoreThreshold {
			add(schema.AlertAtRisk, fmt.Sprintf("Score %s below %s",
				formatScore(score), formatScore(cfg.AtRiskScoreThreshold)))
		}

		recent := recentActiveDays[key]
		if score < cfg.DecliningScoreThreshold && recent < cfg.DecliningActiveDaysMin && !inactive {
			dayWord := "days"
			if recent == 1 {
				dayWord = "day"
			}
			add(schema.AlertDeclining, fmt.Sprintf("Score %s (below %s), only %d active %s in last 7 days",
				formatScore(score), formatScore(cfg.DecliningScoreThreshold), recent, dayWord))
		}

		alerts = append(alerts, triggered...)
	}
	return alerts
}

// formatScore renders a score without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
