package models

import "time"

// Мероприятие по обработке риска. Владелец обязателен,
// при удалении владельца мероприятия удаляются каскадно.
type Action struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// доля 0..1 с двумя знаками после запятой
	Effectiveness float64 `gorm:"not null" json:"effectiveness"`

	OwnerID uint `gorm:"not null" json:"owner_id"`
	Owner   User `gorm:"constraint:OnDelete:CASCADE" json:"owner"`
}
