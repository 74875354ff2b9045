package domain

import (
	"encoding/json"
	"time"
)

// Snapshot preserves reported content for moderation review.
type Snapshot struct {
	ID        string
	ReportID  string
	Content   json.RawMessage
	CreatedAt time.Time
}
