package mongo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidateURI checks the shape of a connection string before any dial:
// a mongodb or mongodb+srv scheme, a host, no CR/LF. A database named in
// the URI path must match database, the one the store reads.
func ValidateURI(raw, database string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return errors.New("empty")
	case strings.ContainsAny(raw, "\r\n"):
		return errors.New("contains CR/LF")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf(`scheme must be "mongodb" or "mongodb+srv", got %q`, u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	if named := strings.Trim(u.Path, "/"); named != "" && database != "" && named != database {
		return fmt.Errorf("names database %q but mongo_database is %q", named, database)
	}
	return nil
}
