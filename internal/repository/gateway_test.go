package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/repository/common"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

func newMockGateway(t *testing.T, driver string) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewGateway(sqlx.NewDb(mockDB, driver)), mock
}

func TestGateway_SelectNormalizesBytes(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.* FROM products p WHERE p.id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), []byte("Túi khí cách nhiệt")))

	rows, err := g.Select(context.Background(), resource.Statement{
		Text: "SELECT p.* FROM products p WHERE p.id = ?",
		Args: []any{int64(1)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Túi khí cách nhiệt", rows[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_SelectEmptyIsNotNil(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := g.Select(context.Background(), resource.Statement{Text: "SELECT id FROM partners"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGateway_RebindsForPostgres(t *testing.T) {
	g, mock := newMockGateway(t, "postgres")
	assert.Equal(t, resource.DialectPostgres, g.Dialect())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news n WHERE n.is_published = TRUE AND n.is_featured = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := g.Count(context.Background(), resource.Statement{
		Text: "SELECT COUNT(*) FROM news n WHERE n.is_published = TRUE AND n.is_featured = ?",
		Args: []any{true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_GetNotFound(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectQuery("SELECT").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := g.Get(context.Background(), resource.Statement{Text: "SELECT * FROM news WHERE slug = ?", Args: []any{"missing"}})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGateway_InsertMySQL(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO partners (name) VALUES (?)")).
		WithArgs("Bình Minh").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := g.Insert(context.Background(), resource.Statement{Text: "INSERT INTO partners (name) VALUES (?)", Args: []any{"Bình Minh"}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_InsertPostgresReturningID(t *testing.T) {
	g, mock := newMockGateway(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO partners (name) VALUES ($1) RETURNING id")).
		WithArgs("Bình Minh").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := g.Insert(context.Background(), resource.Statement{Text: "INSERT INTO partners (name) VALUES (?)", Args: []any{"Bình Minh"}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ExecReportsAffectedRows(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM partners WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := g.Exec(context.Background(), resource.Statement{Text: "DELETE FROM partners WHERE id = ?", Args: []any{int64(3)}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.ErrorCode
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, apperror.ErrCodeDuplicateKey},
		{"mysql parent row", &mysql.MySQLError{Number: 1451}, apperror.ErrCodeHasDependents},
		{"mysql child row", &mysql.MySQLError{Number: 1452}, apperror.ErrCodeValidation},
		{"pq duplicate", &pq.Error{Code: "23505"}, apperror.ErrCodeDuplicateKey},
		{"pq delete referenced", &pq.Error{Code: "23503", Message: `update or delete on table "categories" violates foreign key constraint`}, apperror.ErrCodeHasDependents},
		{"pq insert missing parent", &pq.Error{Code: "23503", Message: `insert or update on table "products" violates foreign key constraint`}, apperror.ErrCodeValidation},
		{"other", assert.AnError, apperror.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.CodeOf(classify(tt.err)))
		})
	}
}

func TestGateway_ExecClassifiesDriverErrors(t *testing.T) {
	g, mock := newMockGateway(t, "mysql")

	mock.ExpectExec("UPDATE").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'slug'"})

	_, err := g.Exec(context.Background(), resource.Statement{Text: "UPDATE products SET slug = ? WHERE id = ?", Args: []any{"a", int64(1)}})
	assert.True(t, apperror.IsDuplicateKey(err))
}
