package notifications

import (
	"time"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// Level classifies notification severity.
type Level string

// Severity classes.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Notification is a derived, deduplicated alert fact. UniqueKey is the
// natural idempotence key; re-running the rule engine never materializes
// a second row for the same fact occurrence.
type Notification struct {
	ID          int64     `json:"id"`
	UniqueKey   string    `json:"unique_key"`
	TargetRole  rbac.Role `json:"target_role"`
	TitleEN     string    `json:"title_en"`
	TitleAR     string    `json:"title_ar"`
	MessageEN   string    `json:"message_en"`
	MessageAR   string    `json:"message_ar"`
	Level       Level     `json:"level"`
	RelatedType string    `json:"related_type"`
	RelatedID   int64     `json:"related_id"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
