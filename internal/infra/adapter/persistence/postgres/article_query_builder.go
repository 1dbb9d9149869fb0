// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"ft-crawler/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listing in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate
// duplication. It uses numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds WHERE clause and arguments for the optional
// published_at range filters. Returns an empty clause when no filters are
// set.
func (qb *ArticleQueryBuilder) BuildWhereClause(filters repository.ArticleFilters, tableAlias string) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	col := "published_at"
	if tableAlias != "" {
		col = tableAlias + ".published_at"
	}

	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", col, paramIndex))
		args = append(args, *filters.From)
		paramIndex++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", col, paramIndex))
		args = append(args, *filters.To)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
