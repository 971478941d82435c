package scanner

import "strings"

// NormalizeDuckDBType maps a DuckDB column type to the catalog's normalized
// type tags: integer, float, boolean, string, date, datetime, time,
// duration, categorical, null, unknown.
func NormalizeDuckDBType(dbType string) string {
	t := strings.ToUpper(strings.TrimSpace(dbType))

	// Parameterized types: DECIMAL(18,3), ENUM('a','b'), TIMESTAMP WITH TIME ZONE.
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}

	switch {
	case t == "TINYINT", t == "SMALLINT", t == "INTEGER", t == "BIGINT",
		t == "HUGEINT", t == "UTINYINT", t == "USMALLINT", t == "UINTEGER",
		t == "UBIGINT", t == "UHUGEINT", t == "INT":
		return "integer"
	case t == "FLOAT", t == "REAL", t == "DOUBLE", t == "DECIMAL", t == "NUMERIC":
		return "float"
	case t == "BOOLEAN", t == "BOOL":
		return "boolean"
	case t == "VARCHAR", t == "TEXT", t == "STRING", t == "CHAR", t == "BPCHAR":
		return "string"
	case t == "DATE":
		return "date"
	case strings.HasPrefix(t, "TIMESTAMP"):
		return "datetime"
	case strings.HasPrefix(t, "TIME"):
		return "time"
	case t == "INTERVAL":
		return "duration"
	case t == "ENUM":
		return "categorical"
	case t == "NULL", t == "SQLNULL":
		return "null"
	default:
		return "unknown"
	}
}
