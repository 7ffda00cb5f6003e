// Package resource описывает сущности сайта декларативно: таблица, колонки,
// JSON-колонки, алиасы полей, фильтры и зависимые записи. По этим описаниям
// строятся SQL-запросы и преобразуются строки ответа.
package resource

import (
	"fmt"
	"sort"
)

// Kind — тип значения колонки. Определяет приведение при чтении и записи.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindJSON
	KindTime
)

// Column описывает одну колонку таблицы (или вычисляемое поле из JOIN).
type Column struct {
	Name string
	Kind Kind
	// ReadOnly — колонку нельзя передать от клиента (id, created_at, view_count...).
	ReadOnly bool
	// Virtual — поле приходит из JOIN и в таблице не существует.
	Virtual bool
	// Hidden — поле никогда не отдаётся наружу (пароль).
	Hidden bool
	// Rules — теги go-playground/validator для непустого значения.
	Rules string
	// Default подставляется при создании, если значение не передано.
	Default    any
	DefaultNow bool
}

// Alias связывает имя колонки в БД с именем, которое видит клиент.
type Alias struct {
	Stored  string
	Exposed string
}

// Scope — публичный список (только видимые записи) или админский.
type Scope int

const (
	ScopePublic Scope = 1 << iota
	ScopeAdmin
)

// ScopeBoth — фильтр доступен и публично, и в админке.
const ScopeBoth = ScopePublic | ScopeAdmin

type FilterMode int

const (
	// FilterEqual — col = ?
	FilterEqual FilterMode = iota
	// FilterSearch — (col1 LIKE ? OR col2 LIKE ?)
	FilterSearch
)

// Filter — поддерживаемый параметр запроса списка.
type Filter struct {
	Param   string
	Mode    FilterMode
	Column  string
	Kind    Kind
	Columns []string
	Scope   Scope
}

type OrderTerm struct {
	Column string
	Desc   bool
}

// Join добавляет LEFT JOIN и колонки из связанной таблицы.
type Join struct {
	Clause  string
	Columns []string
}

// Dependent — дочерняя таблица, ссылающаяся на запись через Column.
// Reason — шаблон сообщения с одним %d.
type Dependent struct {
	Table  string
	Column string
	Reason string
}

// CreateRule ограничивает публичное создание (форма контактов, отзыв).
type CreateRule struct {
	Allowed  []string
	Required []string
}

// Schema — описание одной сущности.
type Schema struct {
	Name  string
	Label string
	Table string
	Alias string

	Columns          []Column
	Aliases          []Alias
	RequiredOnCreate []string

	VisibilityColumn string
	SlugColumn       string
	SlugSource       string
	ViewCounter      bool

	Filters    []Filter
	OrderBy    []OrderTerm
	Joins      []Join
	Dependents []Dependent

	PublicCreate *CreateRule
	// DuplicateMessage — текст ошибки при нарушении уникальности.
	DuplicateMessage string

	DefaultLimit int
	MaxLimit     int

	columns         map[string]int
	exposedToStored map[string]string
	storedToExposed map[string][]string
}

func (s *Schema) compile() error {
	if s.Name == "" || s.Table == "" || s.Alias == "" {
		return fmt.Errorf("resource: schema %q: name, table and alias are required", s.Name)
	}

	s.columns = make(map[string]int, len(s.Columns))
	for i, col := range s.Columns {
		if _, dup := s.columns[col.Name]; dup {
			return fmt.Errorf("resource: schema %q: duplicate column %q", s.Name, col.Name)
		}
		s.columns[col.Name] = i
	}

	s.exposedToStored = make(map[string]string, len(s.Aliases))
	s.storedToExposed = make(map[string][]string, len(s.Aliases))
	for _, a := range s.Aliases {
		if _, ok := s.columns[a.Stored]; !ok {
			return fmt.Errorf("resource: schema %q: alias %q points to unknown column %q", s.Name, a.Exposed, a.Stored)
		}
		if _, clash := s.columns[a.Exposed]; clash {
			return fmt.Errorf("resource: schema %q: alias %q shadows a column", s.Name, a.Exposed)
		}
		s.exposedToStored[a.Exposed] = a.Stored
		s.storedToExposed[a.Stored] = append(s.storedToExposed[a.Stored], a.Exposed)
	}

	check := func(kind, name string) error {
		if _, ok := s.columns[name]; !ok {
			return fmt.Errorf("resource: schema %q: %s references unknown column %q", s.Name, kind, name)
		}
		return nil
	}

	for _, name := range s.RequiredOnCreate {
		if err := check("required", name); err != nil {
			return err
		}
	}
	for _, f := range s.Filters {
		for _, name := range append([]string{f.Column}, f.Columns...) {
			if name == "" {
				continue
			}
			if err := check("filter "+f.Param, name); err != nil {
				return err
			}
		}
	}
	for _, o := range s.OrderBy {
		if err := check("order", o.Column); err != nil {
			return err
		}
	}
	for _, name := range []string{s.VisibilityColumn, s.SlugColumn, s.SlugSource} {
		if name == "" {
			continue
		}
		if err := check("column", name); err != nil {
			return err
		}
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 10
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 100
	}
	return nil
}

// Column возвращает описание колонки по имени в БД.
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.columns[name]
	if !ok {
		return Column{}, false
	}
	return s.Columns[i], true
}

// Writable — колонка принимается от клиента.
func (s *Schema) Writable(name string) bool {
	col, ok := s.Column(name)
	return ok && !col.ReadOnly && !col.Virtual
}

// Known — имя относится к сущности: колонка или алиас.
func (s *Schema) Known(key string) bool {
	if _, ok := s.columns[key]; ok {
		return true
	}
	_, ok := s.exposedToStored[key]
	return ok
}

// StoredName переводит имя поля клиента в имя колонки.
func (s *Schema) StoredName(key string) string {
	if stored, ok := s.exposedToStored[key]; ok {
		return stored
	}
	return key
}

// ExposedName возвращает имя, под которым колонка известна клиенту
// (первый алиас), либо само имя колонки.
func (s *Schema) ExposedName(stored string) string {
	if names := s.storedToExposed[stored]; len(names) > 0 {
		return names[0]
	}
	return stored
}

// JSONColumns — колонки, которые хранятся как сериализованный JSON.
func (s *Schema) JSONColumns() []string {
	var out []string
	for _, col := range s.Columns {
		if col.Kind == KindJSON {
			out = append(out, col.Name)
		}
	}
	return out
}

// HasColumn сообщает, есть ли физическая колонка в таблице.
func (s *Schema) HasColumn(name string) bool {
	col, ok := s.Column(name)
	return ok && !col.Virtual
}

// Registry хранит описания сущностей. После создания не меняется.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry проверяет и индексирует описания.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if err := s.compile(); err != nil {
			return nil, err
		}
		if _, dup := r.schemas[s.Name]; dup {
			return nil, fmt.Errorf("resource: duplicate schema %q", s.Name)
		}
		r.schemas[s.Name] = s
	}
	return r, nil
}

// MustNewRegistry паникует на некорректном описании: это ошибка программиста.
func MustNewRegistry(schemas ...*Schema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// MustGet используется при сборке роутера, где отсутствие схемы — баг.
func (r *Registry) MustGet(name string) *Schema {
	s, ok := r.schemas[name]
	if !ok {
		panic(fmt.Sprintf("resource: schema %q is not registered", name))
	}
	return s
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
