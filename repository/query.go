package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumstack/ostack-console/apperror"
)

// ListQuery is the declarative list spec shared by all resource types.
// Filters map a column to "op:value" with op one of eq|not|in|like; each
// repository restricts the usable columns and operators with an allow-list.
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	OrderBy string
	Filters map[string]string
}

func (q ListQuery) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q ListQuery) perPage() int {
	if q.PerPage < 1 {
		return 10
	}
	return q.PerPage
}

// apply builds the filtered, sorted, paginated query. Columns and operators
// outside the allow-lists are rejected before touching the database.
func (q ListQuery) apply(db *gorm.DB, sortable []string, filterable map[string][]string) (*gorm.DB, error) {
	for column, raw := range q.Filters {
		allowedOps, ok := filterable[column]
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("filter field %q not allowed", column))
		}
		op, value, found := strings.Cut(raw, ":")
		if !found || value == "" {
			return nil, apperror.Validation(fmt.Sprintf("filter %q must look like op:value", column))
		}
		if !slices.Contains(allowedOps, op) {
			return nil, apperror.Validation(fmt.Sprintf("operator %q not allowed for field %q", op, column))
		}
		if strings.HasSuffix(column, "_id") {
			for _, element := range strings.Split(value, ",") {
				if _, err := uuid.Parse(element); err != nil {
					return nil, apperror.Validation(fmt.Sprintf("filter %q requires uuid values, got %q", column, element))
				}
			}
		}
		switch op {
		case "eq":
			db = db.Where(column+" = ?", value)
		case "not":
			db = db.Where(column+" <> ?", value)
		case "in":
			db = db.Where(column+" IN ?", strings.Split(value, ","))
		case "like":
			db = db.Where(column+" LIKE ?", "%"+value+"%")
		default:
			return nil, apperror.Validation(fmt.Sprintf("unknown operator %q", op))
		}
	}

	if q.SortBy != "" {
		if !slices.Contains(sortable, q.SortBy) {
			return nil, apperror.Validation(fmt.Sprintf("sort field %q not allowed", q.SortBy))
		}
		order := q.SortBy
		if q.OrderBy == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	}

	return db.Offset((q.page() - 1) * q.perPage()).Limit(q.perPage()), nil
}
