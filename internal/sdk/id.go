package sdk

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// UniqueID returns a fresh, lexically sortable identifier for a new record.
func UniqueID() string {
	return strings.ToLower(ulid.Make().String())
}
