package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/todo-team-api/internal/repository"
)

type cascadeResult struct {
	todos    int64
	projects int64
}

func cascadeDeleteProject(ctx context.Context, repos repository.Repositories, projectID uint64, batchSize int, at time.Time) (cascadeResult, error) {
	var res cascadeResult

	n, err := repos.Todos.SoftDeleteByProject(ctx, projectID, batchSize, at)
	if err != nil {
		return res, fmt.Errorf("failed to delete project todos: %w", err)
	}
	res.todos += n

	if err := repos.Projects.SoftDeleteByIDs(ctx, []uint64{projectID}, at); err != nil {
		return res, fmt.Errorf("failed to delete project: %w", err)
	}
	res.projects++
	return res, nil
}

// cascadeDeleteTeam soft-deletes the team's projects with their todos, the
// remaining team todos, and the team. Projects are walked by keyset so the
// whole set is covered whatever its size.
func cascadeDeleteTeam(ctx context.Context, repos repository.Repositories, teamID uint64, batchSize int, at time.Time) (cascadeResult, error) {
	var (
		res    cascadeResult
		lastID uint64
	)
	for {
		ids, err := repos.Projects.ListActiveIDsByTeam(ctx, teamID, lastID, batchSize)
		if err != nil {
			return res, fmt.Errorf("failed to list team projects: %w", err)
		}
		for _, id := range ids {
			r, err := cascadeDeleteProject(ctx, repos, id, batchSize, at)
			res.todos += r.todos
			res.projects += r.projects
			if err != nil {
				return res, err
			}
		}
		if len(ids) < batchSize {
			break
		}
		lastID = ids[len(ids)-1]
	}

	n, err := repos.Todos.SoftDeleteByTeam(ctx, teamID, batchSize, at)
	if err != nil {
		return res, fmt.Errorf("failed to delete team todos: %w", err)
	}
	res.todos += n

	if err := repos.Teams.SoftDeleteByIDs(ctx, []uint64{teamID}, at); err != nil {
		return res, fmt.Errorf("failed to delete team: %w", err)
	}
	return res, nil
}
