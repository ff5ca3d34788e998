package models

import (
	"time"

	"prudence/internal/scoring"
)

// Риск из реестра. Рейтинги всегда производные: пересчитываются
// перед каждым сохранением, напрямую от клиента не принимаются.
type Risk struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Description string `gorm:"type:text;not null" json:"description"`

	InherentProbability int     `gorm:"not null" json:"inherent_probability"`
	InherentImpact      int     `gorm:"not null" json:"inherent_impact"`
	InherentRiskRating  float64 `json:"inherent_risk_rating"`

	ResidualProbability *int     `json:"residual_probability"`
	ResidualImpact      *int     `json:"residual_impact"`
	ResidualRiskRating  *float64 `json:"residual_risk_rating"`

	RiskOwnerID *uint `json:"risk_owner_id"`
	RiskOwner   *User `gorm:"constraint:OnDelete:SET NULL" json:"owner,omitempty"`

	AssessorID *uint `json:"assessor_id"`
	Assessor   *User `gorm:"constraint:OnDelete:SET NULL" json:"assessor,omitempty"`

	// назначенный ревьюер, только роль L2 (проверяется при назначении)
	AssignedToID *uint `json:"assigned_to_id"`
	AssignedTo   *User `gorm:"constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`

	RiskTypeID *uint     `json:"risk_type_id"`
	RiskType   *RiskType `gorm:"constraint:OnDelete:SET NULL" json:"risk_type,omitempty"`

	Controls []Control `gorm:"many2many:risk_controls" json:"controls"`

	LastAssessed time.Time `gorm:"autoUpdateTime" json:"last_assessed"`

	// вычисляемые поля для отдачи наружу, см. Decorate
	RiskLevel                string `gorm:"-" json:"risk_level,omitempty"`
	InherentProbabilityLabel string `gorm:"-" json:"inherent_probability_label,omitempty"`
	InherentImpactLabel      string `gorm:"-" json:"inherent_impact_label,omitempty"`
}

// RecalculateRatings пересчитывает производные рейтинги. Вызывается
// обработчиками непосредственно перед каждым сохранением — никаких
// неявных хуков жизненного цикла.
func (r *Risk) RecalculateRatings() {
	r.InherentRiskRating = scoring.Rating(r.InherentProbability, r.InherentImpact)

	// остаточный рейтинг есть тогда и только тогда, когда заданы
	// и остаточная вероятность, и остаточное влияние
	if r.ResidualProbability != nil && r.ResidualImpact != nil {
		v := scoring.Rating(*r.ResidualProbability, *r.ResidualImpact)
		r.ResidualRiskRating = &v
	} else {
		r.ResidualRiskRating = nil
	}
}

// Decorate заполняет вычисляемые поля перед сериализацией.
func (r *Risk) Decorate() {
	if r.ResidualRiskRating != nil {
		r.RiskLevel = scoring.Classify(*r.ResidualRiskRating)
	}
	r.InherentProbabilityLabel = scoring.ScaleLabel(r.InherentProbability)
	r.InherentImpactLabel = scoring.ScaleLabel(r.InherentImpact)

	for i := range r.Controls {
		r.Controls[i].EffectivenessDisplay = scoring.DescribeEffectiveness(r.Controls[i].Effectiveness)
	}
}
