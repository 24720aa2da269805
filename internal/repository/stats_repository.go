package repository

import (
	"context"
	"time"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type statsRepository struct {
	q Querier
}

// NewStatsRepository builds repository.
func NewStatsRepository(q Querier) StatsRepository {
	return &statsRepository{q: q}
}

func (r *statsRepository) ListDailyAverages(ctx context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.DailyResolutionStat, error) {
	const query = `
        SELECT day, category, average_minutes, resolved_count
        FROM daily_resolution_stats
        WHERE category=$1 AND day >= $2 AND day < $3
        ORDER BY day ASC`
	rows, err := r.q.Query(ctx, query, category, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DailyResolutionStat
	for rows.Next() {
		var s domain.DailyResolutionStat
		if err := rows.Scan(&s.Day, &s.Category, &s.AverageMinutes, &s.ResolvedCount); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
