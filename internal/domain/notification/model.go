package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification maps to the notification table: the in-app inbox entry a
// user sees, written alongside whatever the event sink delivers.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
