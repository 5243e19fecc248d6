package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// sqlDialect 仅区分 postgres 与 sqlite，两者在 JSON 取值与模糊匹配上写法不同
type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

func dialectOf(db *gorm.DB) sqlDialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	return parseDialect(db.Dialector.Name())
}

func parseDialect(name string) sqlDialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// jsonText 取 JSON 列中某个键的文本值
func (d sqlDialect) jsonText(column, key string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

// containsFold 大小写不敏感的包含匹配，参数为 %value%
func (d sqlDialect) containsFold(column string) string {
	if d == dialectPostgres {
		return column + " ILIKE ?"
	}
	// sqlite 的 LIKE 对 ASCII 默认不区分大小写
	return column + " LIKE ?"
}
