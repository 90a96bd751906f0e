package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier suitable for storage
// keys and token ids.
func New() string {
	return ulid.Make().String()
}
