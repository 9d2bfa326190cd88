package repositories

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// DescribeValue renders a stored value for the debug inspector without
// exposing the record types outside this package.
func DescribeValue(key string, val []byte) string {
	if strings.HasPrefix(key, "user:") {
		return "room " + string(val)
	}

	var record roomRecord
	if err := cbor.Unmarshal(val, &record); err != nil {
		return fmt.Sprintf("%d bytes", len(val))
	}

	state := "open"
	if record.ClosedOn != nil {
		state = "closed " + record.ClosedOn.Format("2006-01-02")
	}
	return fmt.Sprintf("%q v%d, %d users, %s", record.Name, record.Version, len(record.Users), state)
}
