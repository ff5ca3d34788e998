// Package policy — ролевые фильтры выборок в одном месте,
// вместо разрозненных условий по обработчикам.
package policy

import (
	"prudence/internal/models"

	"gorm.io/gorm"
)

// OwnedOrAssessedRisks — риски, где пользователь владелец или оценщик ("мои риски").
func OwnedOrAssessedRisks(u models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("risk_owner_id = ? OR assessor_id = ?", u.ID, u.ID)
	}
}

// OwnedControls — контроли, где пользователь владелец ("мои контроли").
func OwnedControls(u models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", u.ID)
	}
}

// VisibleAssessments — видимость оценок по роли:
// L3 видит все, остальные — только оценки, где они оценщики.
func VisibleAssessments(u models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if u.Role == models.RoleL3 {
			return db
		}
		return db.Where("assessor_id = ?", u.ID)
	}
}

// HighResidualRisks — дашбордное условие «высокого» риска.
// Сознательно оставлено как есть: это НЕ эквивалент rating >= 15,
// риск с остаточными (4,4) под условие не попадает.
func HighResidualRisks(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(residual_probability >= 3 AND residual_impact >= 5) OR (residual_probability >= 5 AND residual_impact >= 3)")
}

// PendingAssessments — ожидающие оценки конкретного оценщика.
func PendingAssessments(u models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("assessor_id = ? AND status = ?", u.ID, models.AssessmentPending)
	}
}
