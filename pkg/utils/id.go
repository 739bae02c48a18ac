package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

// idSeq breaks ties between ids minted within the same clock reading.
var idSeq uint64

// GenID returns a time-derived numeric identifier. Sessions, instruments,
// forums and posts are all keyed by these.
func GenID() uint64 {
	ts := uint64(time.Now().UTC().UnixMicro())
	return ts*1000 + atomic.AddUint64(&idSeq, 1)%1000
}

// FormatID renders a numeric id as a fixed-width decimal string so that
// byte-wise key order in the store equals numeric order.
func FormatID(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

// ParseID parses a decimal id, returning false on malformed input.
func ParseID(s string) (uint64, bool) {
	var id uint64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
