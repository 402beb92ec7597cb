package dietplan

import (
	"time"

	"github.com/google/uuid"
)

// Diet plan statuses.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusStopped  = "stopped"
)

// Meal types for logged entries.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// ValidMealType reports whether mealType is one of the known meal types.
func ValidMealType(mealType string) bool {
	switch mealType {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Plan maps to the diet_plan table.
type Plan struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DieticianID uuid.UUID `db:"dietician_id" json:"dietician_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MealEntry maps to the meal_entry table: a meal logged against a plan.
type MealEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DietPlanID  uuid.UUID `db:"diet_plan_id" json:"diet_plan_id"`
	MealType    string    `db:"meal_type" json:"meal_type"`
	Description string    `db:"description" json:"description"`
	LoggedAt    time.Time `db:"logged_at" json:"logged_at"`
}
