package database

import (
	"fmt"
	"sort"
	"strings"
)

// Query is a SQL statement with its positional parameters.
type Query struct {
	SQL  string
	Args []any
}

// QueryBuilder assembles parameterized statements. Values never end up
// inside the SQL text, only behind $n placeholders.
type QueryBuilder struct{}

// Generic wraps a hand-written statement with its parameters.
func (QueryBuilder) Generic(sql string, params ...Field) Query {
	q := Query{SQL: sql, Args: make([]any, 0, len(params))}
	for _, p := range params {
		q.Args = append(q.Args, p)
	}
	return q
}

// Insert builds an INSERT for one row. Columns are emitted in sorted order
// so the statement text is stable.
func (QueryBuilder) Insert(table string, fields RowFields) Query {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, 0, len(columns))
	q := Query{Args: make([]any, 0, len(columns))}

	for i, column := range columns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		q.Args = append(q.Args, fields[column])
	}

	q.SQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	return q
}

// Select builds a plain projection over one table.
func (QueryBuilder) Select(table string, columns ...string) Query {
	return Query{SQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)}
}

// Delete builds a DELETE keyed on a single column.
func (QueryBuilder) Delete(table, column string, value Field) Query {
	return Query{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, column),
		Args: []any{value},
	}
}
