package supply

import (
	"time"

	"github.com/google/uuid"
)

// Supply maps to the medical_supply table: a stocked item such as gauze,
// syringes or gloves.
type Supply struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Unit      string    `db:"unit" json:"unit"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
