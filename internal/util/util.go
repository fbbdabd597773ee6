package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewCycleID tags one dispatch cycle. ULID is sortable (nice for log
// correlation and dashboards).
func NewCycleID() string {
	t := time.Now().UTC()
	return "cyc_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
