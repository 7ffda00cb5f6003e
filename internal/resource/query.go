package resource

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
)

// Dialect — диалект SQL хранилища.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// AdminMaxLimit — верхняя граница размера страницы в админке.
const AdminMaxLimit = 1000

// MaxPage — верхняя граница номера страницы, OFFSET не переполняется.
const MaxPage = 1_000_000

// Statement — текст запроса с позиционными параметрами "?".
// Значения клиента попадают только в Args.
type Statement struct {
	Text string
	Args []any
}

// Page — запрошенная страница после нормализации.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination — блок пагинации в ответе.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination считает число страниц: ceil(total/limit), 0 при пустой выборке.
func NewPagination(p Page, total int64) Pagination {
	var pages int64
	if total > 0 && p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{Page: p.Number, Limit: p.Limit, Total: total, TotalPages: pages}
}

// ParsePage нормализует page/limit: page в 1..MaxPage, limit по умолчанию
// у сущности, не больше максимума для области.
func ParsePage(s *Schema, scope Scope, rawPage, rawLimit string) Page {
	page, err := cast.ToIntE(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, err := cast.ToIntE(strings.TrimSpace(rawLimit))
	if err != nil || limit < 1 {
		limit = s.DefaultLimit
	}
	maxLimit := s.MaxLimit
	if scope == ScopeAdmin && maxLimit < AdminMaxLimit {
		maxLimit = AdminMaxLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

func (s *Schema) qualify(column string) string {
	return s.Alias + "." + column
}

func (s *Schema) selectClause() string {
	parts := []string{s.Alias + ".*"}
	for _, j := range s.Joins {
		parts = append(parts, j.Columns...)
	}
	return strings.Join(parts, ", ")
}

func (s *Schema) fromClause(withJoins bool) string {
	var b strings.Builder
	b.WriteString(s.Table)
	b.WriteString(" ")
	b.WriteString(s.Alias)
	if withJoins {
		for _, j := range s.Joins {
			b.WriteString(" ")
			b.WriteString(j.Clause)
		}
	}
	return b.String()
}

func (s *Schema) orderClause() string {
	if len(s.OrderBy) == 0 {
		return s.qualify("id") + " ASC"
	}
	parts := make([]string, 0, len(s.OrderBy))
	for _, o := range s.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, s.qualify(o.Column)+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// where собирает условия в порядке описания фильтров, чтобы текст запроса
// был детерминированным.
func (s *Schema) where(scope Scope, raw map[string]string) (string, []any, error) {
	var (
		conds  []string
		args   []any
		fields []apperror.FieldError
	)

	if scope == ScopePublic && s.VisibilityColumn != "" {
		conds = append(conds, s.qualify(s.VisibilityColumn)+" = TRUE")
	}

	for _, f := range s.Filters {
		if f.Scope&scope == 0 {
			continue
		}
		value, ok := raw[f.Param]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}

		switch f.Mode {
		case FilterEqual:
			v, err := parseFilterValue(f.Kind, value)
			if err != nil {
				fields = append(fields, apperror.FieldError{Field: f.Param, Message: invalidValueMessage})
				continue
			}
			conds = append(conds, s.qualify(f.Column)+" = ?")
			args = append(args, v)
		case FilterSearch:
			pattern := "%" + escapeLike(value) + "%"
			parts := make([]string, 0, len(f.Columns))
			for _, col := range f.Columns {
				parts = append(parts, s.qualify(col)+" LIKE ?")
				args = append(args, pattern)
			}
			conds = append(conds, "("+strings.Join(parts, " OR ")+")")
		}
	}

	if len(fields) > 0 {
		return "", nil, apperror.Validation(fields)
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func parseFilterValue(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return cast.ToInt64E(raw)
	case KindFloat:
		return cast.ToFloat64E(raw)
	case KindBool:
		return toBool(raw)
	default:
		return raw, nil
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// BuildListQuery строит выборку страницы с фильтрами.
func BuildListQuery(s *Schema, scope Scope, filters map[string]string, page Page) (Statement, error) {
	where, args, err := s.where(scope, filters)
	if err != nil {
		return Statement{}, err
	}
	text := "SELECT " + s.selectClause() +
		" FROM " + s.fromClause(true) +
		where +
		" ORDER BY " + s.orderClause() +
		" LIMIT ? OFFSET ?"
	args = append(args, page.Limit, page.Offset())
	return Statement{Text: text, Args: args}, nil
}

// BuildCountQuery использует те же условия, что и BuildListQuery, без JOIN и LIMIT.
func BuildCountQuery(s *Schema, scope Scope, filters map[string]string) (Statement, error) {
	where, args, err := s.where(scope, filters)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Text: "SELECT COUNT(*) FROM " + s.fromClause(false) + where,
		Args: args,
	}, nil
}

// BuildGetQuery выбирает одну запись по колонке (id или slug).
func BuildGetQuery(s *Schema, column string, value any, visibleOnly bool) Statement {
	text := "SELECT " + s.selectClause() +
		" FROM " + s.fromClause(true) +
		" WHERE " + s.qualify(column) + " = ?"
	if visibleOnly && s.VisibilityColumn != "" {
		text += " AND " + s.qualify(s.VisibilityColumn) + " = TRUE"
	}
	return Statement{Text: text + " LIMIT 1", Args: []any{value}}
}

// BuildUpdateStatement строит UPDATE по данным клиента. Неизвестные ключи
// отбрасываются; если не осталось ни одной колонки — ErrNoUpdatableFields;
// если колонки есть, но были и неизвестные ключи — ошибка валидации с их списком.
func BuildUpdateStatement(s *Schema, input map[string]any, id int64) (Statement, error) {
	enc, err := EncodeRow(s, input)
	if err != nil {
		return Statement{}, err
	}
	if len(enc.Values) == 0 {
		return Statement{}, apperror.ErrNoUpdatableFields
	}
	if err := UnknownKeysError(enc.Unknown); err != nil {
		return Statement{}, err
	}
	if err := Validate(s, enc.Values, s.RequiredOnCreate, true); err != nil {
		return Statement{}, err
	}
	return BuildUpdateValues(s, enc.Values, id), nil
}

// UnknownKeysError возвращает ошибку валидации со списком неизвестных ключей
// или nil, если список пуст.
func UnknownKeysError(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	fields := make([]apperror.FieldError, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, apperror.FieldError{Field: key, Message: "Trường không được hỗ trợ"})
	}
	return apperror.Validation(fields)
}

// BuildUpdateValues строит UPDATE из уже приведённых значений.
// Колонки идут в порядке описания сущности.
func BuildUpdateValues(s *Schema, values map[string]any, id int64) Statement {
	var (
		sets []string
		args []any
	)
	for _, col := range s.Columns {
		v, ok := values[col.Name]
		if !ok || col.Virtual {
			continue
		}
		sets = append(sets, col.Name+" = ?")
		args = append(args, v)
	}
	if s.HasColumn("updated_at") {
		if _, explicit := values["updated_at"]; !explicit {
			sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		}
	}
	args = append(args, id)
	return Statement{
		Text: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.Table, strings.Join(sets, ", ")),
		Args: args,
	}
}

// BuildInsertStatement строит INSERT из приведённых значений, колонки в порядке описания.
func BuildInsertStatement(s *Schema, values map[string]any) Statement {
	var (
		cols  []string
		marks []string
		args  []any
	)
	for _, col := range s.Columns {
		v, ok := values[col.Name]
		if !ok || col.Virtual {
			continue
		}
		cols = append(cols, col.Name)
		marks = append(marks, "?")
		args = append(args, v)
	}
	return Statement{
		Text: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Table, strings.Join(cols, ", "), strings.Join(marks, ", ")),
		Args: args,
	}
}

// BuildUpsertStatement вставляет запись или обновляет её по уникальной колонке key.
func BuildUpsertStatement(s *Schema, dialect Dialect, key string, values map[string]any) Statement {
	ins := BuildInsertStatement(s, values)

	var updates []string
	for _, col := range s.Columns {
		if _, ok := values[col.Name]; !ok || col.Name == key || col.Virtual {
			continue
		}
		if dialect == DialectPostgres {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col.Name, col.Name))
		} else {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", col.Name, col.Name))
		}
	}
	if s.HasColumn("updated_at") {
		updates = append(updates, "updated_at = CURRENT_TIMESTAMP")
	}

	text := ins.Text
	if dialect == DialectPostgres {
		text += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(updates, ", "))
	} else {
		text += " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}
	return Statement{Text: text, Args: ins.Args}
}

func BuildDeleteStatement(s *Schema, id int64) Statement {
	return Statement{Text: fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.Table), Args: []any{id}}
}

// BuildDependentCount считает дочерние записи одной зависимости.
func BuildDependentCount(d Dependent, id int64) Statement {
	return Statement{
		Text: fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", d.Table, d.Column),
		Args: []any{id},
	}
}

// BuildViewIncrement увеличивает счётчик просмотров атомарно на стороне БД.
func BuildViewIncrement(s *Schema, id int64) Statement {
	return Statement{
		Text: fmt.Sprintf("UPDATE %s SET view_count = view_count + 1 WHERE id = ?", s.Table),
		Args: []any{id},
	}
}
