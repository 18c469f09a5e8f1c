// Package paging implements the offset/limit page query shared by every
// entity listing: count the matching rows, then fetch one ordered page.
//
// Sort fields are whitelisted per entity and may name computed expressions
// (for example a COALESCE over a joined aggregate). Rows that tie on the
// sort key are ordered by the entity's id so repeated calls are stable.
package paging

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/storeerr"
)

// MaxLimit is the largest page a caller may request.
const MaxLimit = 100

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Request describes one page. An empty SortField selects the entity's
// default field; an empty SortDir means ascending.
type Request struct {
	Skip      int       `json:"skip"`
	Limit     int       `json:"limit"`
	SortField string    `json:"sort_field,omitempty"`
	SortDir   Direction `json:"sort_dir,omitempty"`
}

// Fields maps an entity's public sort field names to SQL expressions.
type Fields struct {
	entity   string
	def      string
	tieBreak string
	columns  map[string]string
}

// NewFields declares the sortable fields of entity. tieBreak is the id column
// appended to every ORDER BY; def must be a key of columns.
func NewFields(entity, tieBreak, def string, columns map[string]string) Fields {
	if _, ok := columns[def]; !ok {
		panic("paging: default sort field " + def + " is not declared for " + entity)
	}
	return Fields{entity: entity, def: def, tieBreak: tieBreak, columns: columns}
}

// Names returns the accepted sort field names in alphabetical order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f.columns))
	for name := range f.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the field used when a request names none.
func (f Fields) Default() string {
	return f.def
}

// Order validates req and returns its ORDER BY expression.
func (f Fields) Order(req Request) (string, error) {
	const op = "paging"

	if req.Skip < 0 {
		return "", storeerr.InvalidArgument(op, "skip must be non-negative, got %d", req.Skip)
	}
	if req.Limit < 1 || req.Limit > MaxLimit {
		return "", storeerr.InvalidArgument(op, "limit must be between 1 and %d, got %d", MaxLimit, req.Limit)
	}

	field := req.SortField
	if field == "" {
		field = f.def
	}
	column, ok := f.columns[field]
	if !ok {
		return "", storeerr.InvalidArgument(op, "unknown %s sort field %q (allowed: %s)",
			f.entity, field, strings.Join(f.Names(), ", "))
	}

	var dir string
	switch Direction(strings.ToLower(string(req.SortDir))) {
	case Asc, "":
		dir = "ASC"
	case Desc:
		dir = "DESC"
	default:
		return "", storeerr.InvalidArgument(op, "sort direction must be %q or %q, got %q", Asc, Desc, req.SortDir)
	}

	return column + " " + dir + ", " + f.tieBreak + " ASC", nil
}

// Fetch counts the rows matched by base and loads the requested page.
// base carries the model and filters; decorate, when set, adds the selects
// and joins that computed sort fields need. It is applied to the page query
// only, so the count stays a plain count of entity rows.
//
// A Skip beyond the total yields an empty page, not an error.
func Fetch[E any](base *gorm.DB, req Request, fields Fields, decorate func(*gorm.DB) *gorm.DB) ([]E, int64, error) {
	order, err := fields.Order(req)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]E, 0)
	if int64(req.Skip) >= total {
		return items, total, nil
	}

	q := base.Session(&gorm.Session{})
	if decorate != nil {
		q = decorate(q)
	}
	if err := q.Order(order).Limit(req.Limit).Offset(req.Skip).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
