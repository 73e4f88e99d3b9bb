package xid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns "<prefix>_<uuidv7>". v7 ids sort by creation time.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

// Short returns the last six hex digits of an id, upper-cased. Used to build
// per-contact invoice prefixes.
func Short(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) > 6 {
		hex = hex[len(hex)-6:]
	}
	return strings.ToUpper(hex)
}
