package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

const templateNameConstraint = "templates_name_key"

type TemplateRepo struct {
	db *sqlx.DB
}

func NewTemplateRepo(db *sqlx.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

type templateRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// Create inserts the template and its questions in one transaction and fills
// in the generated ids and timestamps.
func (r *TemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Millisecond)

	var id int64
	err = tx.QueryRowxContext(ctx,
		r.db.Rebind(`INSERT INTO templates (name, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`),
		t.Name, toMillis(now), toMillis(now),
	).Scan(&id)
	if err != nil {
		return wrapTemplateError(err)
	}

	questions, err := r.insertQuestions(ctx, tx, id, t.Questions)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapTemplateError(err)
	}

	t.ID = id
	t.Questions = questions
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (r *TemplateRepo) GetByName(ctx context.Context, name string) (*domain.Template, error) {
	return r.get(ctx, `SELECT id, name, created_at, updated_at FROM templates WHERE name = ?`, name)
}

func (r *TemplateRepo) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	return r.get(ctx, `SELECT id, name, created_at, updated_at FROM templates WHERE id = ?`, id)
}

func (r *TemplateRepo) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM templates WHERE name = ?)`), name)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Replace overwrites the name and the whole question list of template id.
func (r *TemplateRepo) Replace(ctx context.Context, id int64, t *domain.Template) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Millisecond)

	var createdAt int64
	err = tx.QueryRowxContext(ctx,
		r.db.Rebind(`UPDATE templates SET name = ?, updated_at = ? WHERE id = ? RETURNING created_at`),
		t.Name, toMillis(now), id,
	).Scan(&createdAt)
	if err != nil {
		return wrapTemplateError(err)
	}

	if _, err := tx.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM questions WHERE template_id = ?`), id); err != nil {
		return err
	}

	questions, err := r.insertQuestions(ctx, tx, id, t.Questions)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapTemplateError(err)
	}

	t.ID = id
	t.Questions = questions
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = now
	return nil
}

// Delete removes template id together with its questions.
func (r *TemplateRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM questions WHERE template_id = ?`), id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM templates WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}

	return tx.Commit()
}

func (r *TemplateRepo) ListNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM templates ORDER BY id`); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *TemplateRepo) get(ctx context.Context, query string, arg any) (*domain.Template, error) {
	var row templateRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	questions := []domain.Question{}
	err = r.db.SelectContext(ctx, &questions,
		r.db.Rebind(`SELECT id, template_id, number, question FROM questions WHERE template_id = ? ORDER BY number`),
		row.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load questions of template %d: %w", row.ID, err)
	}

	return &domain.Template{
		ID:        row.ID,
		Name:      row.Name,
		Questions: questions,
		CreatedAt: fromMillis(row.CreatedAt),
		UpdatedAt: fromMillis(row.UpdatedAt),
	}, nil
}

func (r *TemplateRepo) insertQuestions(ctx context.Context, tx *sqlx.Tx, templateID int64, questions []domain.Question) ([]domain.Question, error) {
	stored := make([]domain.Question, len(questions))
	query := r.db.Rebind(`INSERT INTO questions (template_id, number, question) VALUES (?, ?, ?) RETURNING id`)

	for i, q := range questions {
		var id int64
		if err := tx.QueryRowxContext(ctx, query, templateID, q.Number, q.Question).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert question %d: %w", q.Number, err)
		}
		stored[i] = domain.Question{
			ID:         id,
			TemplateID: templateID,
			Number:     q.Number,
			Question:   q.Question,
		}
	}
	return stored, nil
}

func wrapTemplateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTemplateNotFound
	}
	if isUniqueViolation(err, templateNameConstraint, "templates.name") {
		return domain.ErrDuplicateTemplateName
	}
	return err
}
