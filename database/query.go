package database

import (
	"database/sql"

	"pacs-index-api/utils"
)

// execer is satisfied by both *sql.DB and *sql.Tx so store writes can
// join an indexing batch transaction or run standalone.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func conn(db *sql.DB, tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return db
}

type SelectQueryOptions struct {
	Limit          int
	Offset         int
	OrderBy        string
	OrderDirection string
}

// Apply appends the options to a SQL statement. OrderBy accepts a model
// field name and is mapped to its snake_case column.
func (s *SelectQueryOptions) Apply(query string, args []any) (string, []any) {
	if s.OrderBy != "" {
		if s.OrderDirection == "" {
			s.OrderDirection = "ASC"
		}
		query += " ORDER BY " + utils.ToSnakeCase(s.OrderBy) + " " + s.OrderDirection
	}

	if s.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, s.Limit)
	}

	if s.Offset > 0 {
		// sqlite rejects OFFSET without a LIMIT clause; -1 is unbounded.
		if s.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, s.Offset)
	}

	return query, args
}
