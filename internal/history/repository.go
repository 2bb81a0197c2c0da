// Package history persists graded submissions to Postgres for scoreboards
// and prompt de-duplication.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/evaluate"
)

// Repository stores submission history in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a submission history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one graded submission.
func (r *Repository) Record(ctx context.Context, sub evaluate.Submission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submissions (challenge_id, kind, prompt, user_answer, is_correct, score_awarded)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ChallengeID, sub.Kind, sub.Prompt, sub.UserAnswer, sub.IsCorrect, sub.ScoreAwarded)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// TotalScore sums all awarded points across recorded submissions.
func (r *Repository) TotalScore(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(score_awarded), 0) FROM submissions`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum scores: %w", err)
	}
	return total, nil
}

// RecentPrompts returns the newest distinct prompts, newest first, for
// steering generation away from repeats.
func (r *Repository) RecentPrompts(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT prompt FROM submissions
		ORDER BY submitted_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent prompts: %w", err)
	}
	defer rows.Close()

	var prompts []string
	seen := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
