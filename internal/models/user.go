package models

import "time"

type UserRole string

const (
	RoleL1 UserRole = "L1" // обычный пользователь: заводит риски
	RoleL2 UserRole = "L2" // ревьюер: оценивает назначенные ему риски
	RoleL3 UserRole = "L3" // администратор: видит всё
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`

	Username     string   `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string   `gorm:"size:255" json:"email"`
	FirstName    string   `gorm:"size:150" json:"first_name"`
	LastName     string   `gorm:"size:150" json:"last_name"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(2);not null;default:L1" json:"role"`
	IsActive     bool     `gorm:"not null;default:true" json:"is_active"`
}
