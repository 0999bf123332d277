package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/config"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "templates.db")
	require.NoError(t, Migrate(config.DriverSQLite, path))

	db, err := NewConnection(context.Background(), config.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustTemplate(t *testing.T, name string, questions ...string) *domain.Template {
	t.Helper()
	tmpl, err := domain.NewTemplate(name, questions)
	require.NoError(t, err)
	return tmpl
}

func countQuestions(t *testing.T, db *sqlx.DB, templateID int64) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM questions WHERE template_id = ?`, templateID))
	return n
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.db")

	require.NoError(t, Migrate(config.DriverSQLite, path))
	require.NoError(t, Migrate(config.DriverSQLite, path))
}

func TestMigrate_UnsupportedDriver(t *testing.T) {
	assert.Error(t, Migrate("mysql", "whatever"))
}

func TestTemplateRepo_CreateAndGet(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()

	tmpl := mustTemplate(t, "test", "How are you?", "How old are you?")
	require.NoError(t, repo.Create(ctx, tmpl))

	assert.NotZero(t, tmpl.ID)
	assert.False(t, tmpl.CreatedAt.IsZero())
	for _, q := range tmpl.Questions {
		assert.NotZero(t, q.ID)
		assert.Equal(t, tmpl.ID, q.TemplateID)
	}

	stored, err := repo.GetByName(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, stored.ID)
	assert.True(t, stored.SameContent(tmpl))
	assert.Equal(t, []string{"How are you?", "How old are you?"}, stored.QuestionTexts())
	assert.Equal(t, tmpl.CreatedAt, stored.CreatedAt)

	byID, err := repo.GetByID(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", byID.Name)
}

func TestTemplateRepo_CreateWithoutQuestions(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustTemplate(t, "empty")))

	stored, err := repo.GetByName(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, stored.Questions)
}

func TestTemplateRepo_CreateDuplicateName(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustTemplate(t, "test", "How are you?")))
	err := repo.Create(ctx, mustTemplate(t, "test", "Something else?"))

	assert.ErrorIs(t, err, domain.ErrDuplicateTemplateName)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, names)
}

func TestTemplateRepo_GetByName_NotFound(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))

	_, err := repo.GetByName(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestTemplateRepo_Exists(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, mustTemplate(t, "test")))

	exists, err := repo.Exists(ctx, "test")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTemplateRepo_ReplaceRenamesAndSwapsQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	orig := mustTemplate(t, "test", "How are you?", "How old are you?")
	require.NoError(t, repo.Create(ctx, orig))

	next := mustTemplate(t, "newName", "Where do you live?")
	require.NoError(t, repo.Replace(ctx, orig.ID, next))
	assert.Equal(t, orig.ID, next.ID)
	assert.Equal(t, orig.CreatedAt, next.CreatedAt)

	_, err := repo.GetByName(ctx, "test")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	stored, err := repo.GetByName(ctx, "newName")
	require.NoError(t, err)
	assert.Equal(t, []string{"Where do you live?"}, stored.QuestionTexts())
	assert.Equal(t, 1, countQuestions(t, db, orig.ID))
}

func TestTemplateRepo_ReplaceOntoTakenName(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()

	a := mustTemplate(t, "a", "One?")
	b := mustTemplate(t, "b", "Two?")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	err := repo.Replace(ctx, a.ID, mustTemplate(t, "b", "Three?"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTemplateName)

	stored, err := repo.GetByName(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"One?"}, stored.QuestionTexts())
}

func TestTemplateRepo_ReplaceUnknownID(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))

	err := repo.Replace(context.Background(), 999, mustTemplate(t, "test"))

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestTemplateRepo_DeleteCascadesQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	tmpl := mustTemplate(t, "test", "How are you?", "How old are you?")
	require.NoError(t, repo.Create(ctx, tmpl))

	require.NoError(t, repo.Delete(ctx, tmpl.ID))

	_, err := repo.GetByName(ctx, "test")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Equal(t, 0, countQuestions(t, db, tmpl.ID))

	assert.ErrorIs(t, repo.Delete(ctx, tmpl.ID), domain.ErrTemplateNotFound)
}

func TestTemplateRepo_ListNamesInCreationOrder(t *testing.T) {
	repo := NewTemplateRepo(newTestDB(t))
	ctx := context.Background()

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Create(ctx, mustTemplate(t, name)))
	}

	names, err = repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestAuditRepo_RecordIsIdempotent(t *testing.T) {
	repo := NewAuditRepo(newTestDB(t))
	ctx := context.Background()

	entry := domain.AuditEntry{
		EventID:      uuid.Must(uuid.NewV7()),
		Kind:         domain.EventCreated,
		TemplateName: "test",
		RequesterID:  "1234",
		OccurredAt:   time.Now().UTC(),
		RecordedAt:   time.Now().UTC(),
	}

	written, err := repo.Record(ctx, entry)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = repo.Record(ctx, entry)
	require.NoError(t, err)
	assert.False(t, written)

	entries, err := repo.ListByTemplate(ctx, "test", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.EventID, entries[0].EventID)
	assert.Equal(t, "1234", entries[0].RequesterID)
}

func TestAuditRepo_ListByTemplateFollowsRename(t *testing.T) {
	repo := NewAuditRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	entries := []domain.AuditEntry{
		{EventID: uuid.New(), Kind: domain.EventCreated, TemplateName: "test", RequesterID: "1234", OccurredAt: base},
		{EventID: uuid.New(), Kind: domain.EventReplaced, TemplateName: "newName", PreviousName: "test", RequesterID: "1234", OccurredAt: base.Add(time.Second)},
		{EventID: uuid.New(), Kind: domain.EventCreated, TemplateName: "other", RequesterID: "9", OccurredAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		e.RecordedAt = base
		_, err := repo.Record(ctx, e)
		require.NoError(t, err)
	}

	history, err := repo.ListByTemplate(ctx, "test", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.EventReplaced, history[0].Kind)
	assert.Equal(t, domain.EventCreated, history[1].Kind)
	assert.Equal(t, base, history[1].OccurredAt)
}
