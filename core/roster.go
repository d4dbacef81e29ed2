package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// DiscoverLearners builds the roster: every fork of every base repo created
// on or after bootcamp start, minus excluded users, plus manual entries.
// The first fork wins when a user forked more than one base repo. A failed
// fork listing skips that repo with a warning rather than aborting the run.
func DiscoverLearners(ctx context.Context, client contract.ActivityClient, cfg schema.ScoreConfig) []schema.Learner {
	excluded := make(map[string]bool, len(cfg.ExcludedUsers))
	for _, u := range cfg.ExcludedUsers {
		excluded[strings.ToLower(u)] = true
	}

	seen := make(map[string]bool)
	var learners []schema.Learner

	for _, repoFull := range cfg.BaseRepos {
		owner, repo := contract.SplitRepo(repoFull)
		if repo == "" {
			contract.LogWarn(fmt.Sprintf("skipping malformed base repo %q", repoFull), nil)
			continue
		}
		forks, err := client.ListForks(ctx, owner, repo)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("failed to list forks of %s", repoFull), err)
			continue
		}
		for _, fork := range forks {
			if len(fork.CreatedAt) >= 10 && fork.CreatedAt[:10] < cfg.BootcampStartDate {
				continue
			}
			key := strings.ToLower(fork.OwnerLogin)
			if excluded[key] || seen[key] {
				continue
			}
			seen[key] = true
			learners = append(learners, schema.Learner{
				Username: fork.OwnerLogin,
				ForkRepo: fork.FullName,
				BaseRepo: repoFull,
			})
		}
	}

	for _, entry := range cfg.ManualUsers {
		key := strings.ToLower(entry.Username)
		if excluded[key] || seen[key] {
			continue
		}
		seen[key] = true
		learners = append(learners, entry)
	}

	return learners
}
