package models

// Справочник типов рисков (операционный, комплаенс и т.п.)
type RiskType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
