package persistence

import (
	"net/url"
	"regexp"
	"strings"
)

var keyValueDSN = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// NormalizeDSN accepts a URL DSN (postgres://...) or a libpq key=value list.
// Quotes and extra whitespace are removed; key=value lists get sslmode=disable
// when no sslmode is given.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	if s == "" || isURLDSN(s) || !keyValueDSN.MatchString(s) {
		return s
	}

	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// MigrationURL converts a normalized DSN into the postgres:// URL form that
// golang-migrate requires. URL DSNs are returned unchanged; a key=value list
// without host, user or dbname is returned as-is and rejected by the driver.
func MigrationURL(dsn string) string {
	if dsn == "" || isURLDSN(dsn) {
		return dsn
	}

	parts := map[string]string{}
	for _, field := range strings.Fields(dsn) {
		if k, v, ok := strings.Cut(field, "="); ok {
			parts[strings.ToLower(k)] = v
		}
	}

	host, user, dbname := parts["host"], parts["user"], parts["dbname"]
	if host == "" || user == "" || dbname == "" {
		return dsn
	}

	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + dbname}
	if port := parts["port"]; port != "" {
		u.Host = host + ":" + port
	}
	if pass := parts["password"]; pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	if sslmode, ok := parts["sslmode"]; ok {
		u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
	}

	return u.String()
}

func isURLDSN(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}
