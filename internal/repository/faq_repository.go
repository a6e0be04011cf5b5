package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// FAQFilter narrows FAQ listings. Search matches question or answer,
// case-insensitively.
type FAQFilter struct {
	ActiveOnly bool
	Search     string
}

// FAQRepository persists knowledge-base entries.
type FAQRepository interface {
	Create(ctx context.Context, faq *domain.FAQ) error
	GetByID(ctx context.Context, id int64) (*domain.FAQ, error)
	Update(ctx context.Context, faq *domain.FAQ) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error)
}

type faqRepository struct {
	db DBTX
}

// NewFAQRepository builds repository.
func NewFAQRepository(db DBTX) FAQRepository {
	return &faqRepository{db: db}
}

const faqColumns = `id, question, answer, category, is_active, created_at`

func (r *faqRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	const query = `
        INSERT INTO faqs (question, answer, category, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, faq.Question, faq.Answer, faq.Category, faq.IsActive).
		Scan(&faq.ID, &faq.CreatedAt)
}

func (r *faqRepository) GetByID(ctx context.Context, id int64) (*domain.FAQ, error) {
	row := r.db.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id=$1`, id)
	faq, err := scanFAQ(row)
	if err != nil {
		return nil, err
	}
	return faq, nil
}

func (r *faqRepository) Update(ctx context.Context, faq *domain.FAQ) error {
	const query = `
        UPDATE faqs SET question=$2, answer=$3, category=$4, is_active=$5
        WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, faq.ID, faq.Question, faq.Answer, faq.Category, faq.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *faqRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM faqs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *faqRepository) List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		clauses = append(clauses, fmt.Sprintf("(question ILIKE $%d OR answer ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + faqColumns + ` FROM faqs`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FAQ
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *faq)
	}
	return result, rows.Err()
}

func scanFAQ(row pgx.Row) (*domain.FAQ, error) {
	var faq domain.FAQ
	if err := row.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.IsActive, &faq.CreatedAt); err != nil {
		return nil, err
	}
	return &faq, nil
}

// escapeLike quotes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
