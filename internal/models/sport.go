package models

// Sport is reference data created by the seed process; read-only at runtime
type Sport struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Icon string `json:"icon,omitempty"` // Icon name or emoji
}
