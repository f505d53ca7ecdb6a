package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string. ULIDs sort by creation time, so run
// IDs list in the order runs were started.
func NewULID() string {
	return ulid.Make().String()
}
