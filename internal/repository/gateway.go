package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/repository/common"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

// Gateway — единая точка доступа к БД. Выполняет параметризованные
// запросы из пакета resource и возвращает строки как map[string]any.
type Gateway struct {
	db      *sqlx.DB
	dialect resource.Dialect
}

func NewGateway(db *sqlx.DB) *Gateway {
	dialect := resource.DialectMySQL
	if db.DriverName() == "postgres" {
		dialect = resource.DialectPostgres
	}
	return &Gateway{db: db, dialect: dialect}
}

func (g *Gateway) Dialect() resource.Dialect {
	return g.dialect
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Select возвращает все строки выборки. Пустая выборка — пустой срез, не nil.
func (g *Gateway) Select(ctx context.Context, st resource.Statement) ([]map[string]any, error) {
	rows, err := g.db.QueryxContext(ctx, g.db.Rebind(st.Text), st.Args...)
	if err != nil {
		return nil, fmt.Errorf("gateway: select: %w", classify(err))
	}
	defer rows.Close()

	out := make([]map[string]any, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("gateway: scan: %w", err)
		}
		out = append(out, normalize(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gateway: rows: %w", err)
	}
	return out, nil
}

// Get возвращает одну строку или common.ErrNotFound.
func (g *Gateway) Get(ctx context.Context, st resource.Statement) (map[string]any, error) {
	row := make(map[string]any)
	err := g.db.QueryRowxContext(ctx, g.db.Rebind(st.Text), st.Args...).MapScan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("gateway: get: %w", classify(err))
	}
	return normalize(row), nil
}

// Count выполняет SELECT COUNT(*).
func (g *Gateway) Count(ctx context.Context, st resource.Statement) (int64, error) {
	var n int64
	if err := g.db.GetContext(ctx, &n, g.db.Rebind(st.Text), st.Args...); err != nil {
		return 0, fmt.Errorf("gateway: count: %w", classify(err))
	}
	return n, nil
}

// Exec выполняет изменяющий запрос и возвращает число затронутых строк.
// Для MySQL DSN содержит clientFoundRows, поэтому это число совпавших строк.
func (g *Gateway) Exec(ctx context.Context, st resource.Statement) (int64, error) {
	res, err := g.db.ExecContext(ctx, g.db.Rebind(st.Text), st.Args...)
	if err != nil {
		return 0, fmt.Errorf("gateway: exec: %w", classify(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("gateway: rows affected: %w", err)
	}
	return affected, nil
}

// Insert выполняет INSERT и возвращает id новой строки.
func (g *Gateway) Insert(ctx context.Context, st resource.Statement) (int64, error) {
	if g.dialect == resource.DialectPostgres {
		var id int64
		err := g.db.QueryRowxContext(ctx, g.db.Rebind(st.Text+" RETURNING id"), st.Args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("gateway: insert: %w", classify(err))
		}
		return id, nil
	}

	res, err := g.db.ExecContext(ctx, st.Text, st.Args...)
	if err != nil {
		return 0, fmt.Errorf("gateway: insert: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("gateway: last insert id: %w", err)
	}
	return id, nil
}

// normalize превращает []byte драйвера MySQL в строки.
func normalize(row map[string]any) map[string]any {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

// classify переводит ошибки драйверов в ошибки приложения.
func classify(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return apperror.Wrap(err, apperror.ErrCodeDuplicateKey, apperror.ErrDuplicateKey.Message)
		case 1451:
			return apperror.Wrap(err, apperror.ErrCodeHasDependents, msgReferenced)
		case 1452:
			return apperror.Wrap(err, apperror.ErrCodeValidation, msgMissingReference)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperror.Wrap(err, apperror.ErrCodeDuplicateKey, apperror.ErrDuplicateKey.Message)
		case "23503":
			if strings.HasPrefix(pqErr.Message, "update or delete") {
				return apperror.Wrap(err, apperror.ErrCodeHasDependents, msgReferenced)
			}
			return apperror.Wrap(err, apperror.ErrCodeValidation, msgMissingReference)
		}
	}
	return err
}

const (
	msgReferenced       = "Không thể xóa vì còn dữ liệu liên quan"
	msgMissingReference = "Dữ liệu tham chiếu không tồn tại"
)
