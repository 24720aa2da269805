package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type documentationRepository struct {
	q Querier
}

// NewDocumentationRepository builds repository.
func NewDocumentationRepository(q Querier) DocumentationRepository {
	return &documentationRepository{q: q}
}

func (r *documentationRepository) Save(ctx context.Context, doc *domain.Documentation) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO documentation (id, assignment_id, case_id, problem, solution, article_id, author_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (assignment_id) DO UPDATE
        SET problem=EXCLUDED.problem, solution=EXCLUDED.solution, article_id=EXCLUDED.article_id,
            author_id=EXCLUDED.author_id, updated_at=EXCLUDED.updated_at
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		doc.ID,
		doc.AssignmentID,
		doc.CaseID,
		doc.Problem,
		doc.Solution,
		doc.ArticleID,
		doc.AuthorID,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt)
}

func (r *documentationRepository) GetForAssignment(ctx context.Context, assignmentID string) (*domain.Documentation, error) {
	const query = `
        SELECT id, assignment_id, case_id, problem, solution, article_id, author_id, created_at, updated_at
        FROM documentation WHERE assignment_id=$1`
	var doc domain.Documentation
	err := r.q.QueryRow(ctx, query, assignmentID).Scan(
		&doc.ID,
		&doc.AssignmentID,
		&doc.CaseID,
		&doc.Problem,
		&doc.Solution,
		&doc.ArticleID,
		&doc.AuthorID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
