package machine

import "time"

type Category string

const (
	CategoryMachine   Category = "machine"
	CategoryEquipment Category = "equipment"
	CategorySafety    Category = "safety"
)

// ParseCategory folds the stored category; anything unknown is a plain machine.
func ParseCategory(s string) Category {
	switch Category(fold(s)) {
	case CategoryEquipment:
		return CategoryEquipment
	case CategorySafety:
		return CategorySafety
	default:
		return CategoryMachine
	}
}

type Machine struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Category              Category  `json:"category"`
	Status                Status    `json:"status"`
	MaintenanceNote       string    `json:"maintenanceNote,omitempty"`
	RequiresCertification bool      `json:"requiresCertification"`
	Bookable              bool      `json:"bookable"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// CanBeBooked reports whether the machine may ever be booked. Safety
// category machines never can, whatever the stored flag says.
func (m Machine) CanBeBooked() bool {
	return m.Bookable && m.Category != CategorySafety
}
