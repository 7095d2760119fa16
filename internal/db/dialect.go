package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names the SQL flavour spoken by the configured driver.  The value
// doubles as the database/sql driver name.
type Dialect string

const (
	Postgres  Dialect = "postgres"
	SQLite    Dialect = "sqlite"
	SQLServer Dialect = "sqlserver"
)

// ParseDialect maps a DB_DRIVER value to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(driver)); d {
	case Postgres, SQLite, SQLServer:
		return d, nil
	case "mssql":
		return SQLServer, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites '?' placeholders into the dialect's positional form.
func (d Dialect) Rebind(query string) string {
	var prefix string
	switch d {
	case Postgres:
		prefix = "$"
	case SQLServer:
		prefix = "@p"
	default:
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(prefix)
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// latestEntryQuery selects the newest UserHealthData row for one user.
func (d Dialect) latestEntryQuery() string {
	const cols = `user_id, entry_id, timestamp, age, sex, symptoms, habits,
		health_goals, recommendations, follow_up_questions`
	if d == SQLServer {
		return d.Rebind(`SELECT TOP 1 ` + cols + `
		FROM UserHealthData
		WHERE user_id = ?
		ORDER BY timestamp DESC`)
	}
	return d.Rebind(`SELECT ` + cols + `
		FROM UserHealthData
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT 1`)
}
