package ledger

import (
	"fmt"
	"strings"
)

// sqlQueries holds the statements shared by the SQL backends. Both Postgres
// and SQLite accept the same upsert syntax; only placeholders differ.
type sqlQueries struct {
	createTable string
	getCount    string
	hasVisited  string
	markVisited string
	increment   string
}

// quoteIdent double-quotes a table name such as "didanyonereadmycoverletter.com".
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func newSQLQueries(table string, placeholder func(n int) string, timestampType string) sqlQueries {
	t := quoteIdent(table)
	p1, p2 := placeholder(1), placeholder(2)

	return sqlQueries{
		createTable: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          TEXT PRIMARY KEY,
				"count"     BIGINT,
				visited     BOOLEAN,
				"timestamp" %s
			)`, t, timestampType),
		getCount: fmt.Sprintf(`SELECT COALESCE("count", 0) FROM %s WHERE id = %s`, t, p1),
		hasVisited: fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE id = %s)`, t, p1),
		markVisited: fmt.Sprintf(`
			INSERT INTO %s (id, visited, "timestamp")
			VALUES (%s, TRUE, %s)
			ON CONFLICT (id) DO NOTHING`, t, p1, p2),
		increment: fmt.Sprintf(`
			INSERT INTO %s AS l (id, "count")
			VALUES (%s, 1)
			ON CONFLICT (id) DO UPDATE SET "count" = COALESCE(l."count", 0) + 1
			RETURNING "count"`, t, p1),
	}
}

func postgresPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func sqlitePlaceholder(int) string { return "?" }
