package option

import (
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/pkg/db/pagination"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination limits a query to one page plus one extra row so the
// caller can detect whether more results remain.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}
		if size > 250 {
			size = 250
		}
		return stmt.Limit(size + 1)
	})
}
