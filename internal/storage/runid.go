package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
)

const runIDLayout = "%Y%m%dT%H%M%SZ"

// NewRunID returns a sortable run id: the UTC start time followed by a short
// random suffix.
func NewRunID(now time.Time) string {
	return strftime.Format(runIDLayout, now.UTC()) + "-" + uuid.NewString()[:8]
}
