package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a UUID. Route params are validated
// before they ever reach a query.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
