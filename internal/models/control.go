package models

import "time"

// Эффективность контроля — закрытый набор значений, не непрерывная шкала
const (
	EffectivenessNone    = 0.0
	EffectivenessPartial = 0.5
	EffectivenessFull    = 1.0
)

// Контроль — мера, снижающая риск. Связь с рисками many-to-many.
type Control struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string  `gorm:"size:255;not null" json:"name"`
	Description   string  `gorm:"type:text" json:"description"`
	Effectiveness float64 `gorm:"not null;default:0" json:"effectiveness"`

	OwnerID *uint `json:"owner_id"`
	Owner   *User `gorm:"constraint:OnDelete:SET NULL" json:"owner,omitempty"`

	LastAssessed time.Time `gorm:"autoUpdateTime" json:"last_assessed"`

	// вычисляемое поле для отдачи наружу, см. Decorate
	EffectivenessDisplay string `gorm:"-" json:"effectiveness_display,omitempty"`
}
