package schemastore

import (
	"net/url"
	"regexp"
	"strings"
)

// oracleTNSPattern matches an Oracle "easy connect" or TNS-style URL whose
// final path segment is the service name, e.g. "host:1521/ORCLPDB1" or
// "oracle://host:1521/ORCLPDB1".
var oracleTNSPattern = regexp.MustCompile(`(?i)(?:^|/)([A-Z0-9_.]+)(?:\?.*)?$`)

// ExtractDatabaseName pulls the database/service name out of a connection
// URL, dispatching on the dialect prefix. Falls back to the substring
// after the last "/" before any "?" when the dialect isn't recognized or
// parsing fails.
func ExtractDatabaseName(connectionURL string) string {
	lower := strings.ToLower(connectionURL)

	switch {
	case strings.HasPrefix(lower, "mysql://"), strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		if name := fromStandardURL(connectionURL); name != "" {
			return name
		}
	case strings.HasPrefix(lower, "sqlserver://"):
		if name := fromSQLServerURL(connectionURL); name != "" {
			return name
		}
	case strings.HasPrefix(lower, "oracle://"):
		if name := fromOracleTNS(connectionURL); name != "" {
			return name
		}
	default:
		// bare "host:port/service" easy-connect strings carry no scheme.
		if name := fromOracleTNS(connectionURL); name != "" {
			return name
		}
	}

	return fallbackLastSegment(connectionURL)
}

// fromStandardURL handles mysql://, postgres://, postgresql:// URLs where
// the database name is the URL path with its leading slash trimmed.
func fromStandardURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// fromSQLServerURL handles sqlserver://host:port?database=name as well as
// sqlserver://host:port/name forms.
func fromSQLServerURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if db := u.Query().Get("database"); db != "" {
		return db
	}
	return strings.TrimPrefix(u.Path, "/")
}

// fromOracleTNS handles "host:port/service" easy-connect strings and
// "oracle://host:port/service" URLs; the service name is the final
// path/segment component.
func fromOracleTNS(raw string) string {
	matches := oracleTNSPattern.FindStringSubmatch(raw)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// fallbackLastSegment returns the substring after the last "/" and before
// any "?", used when no dialect-specific parse succeeds.
func fallbackLastSegment(raw string) string {
	s := raw
	if idx := strings.Index(s, "?"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
