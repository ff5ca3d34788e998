package handlers

import (
	"net/http"
	"strings"

	"prudence/internal/database"
	"prudence/internal/models"
	"prudence/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type riskCreateRequest struct {
	Description         string `json:"description" binding:"required"`
	InherentProbability int    `json:"inherent_probability" binding:"required,min=1,max=5"`
	InherentImpact      int    `json:"inherent_impact" binding:"required,min=1,max=5"`
	ResidualProbability *int   `json:"residual_probability" binding:"omitempty,min=1,max=5"`
	ResidualImpact      *int   `json:"residual_impact" binding:"omitempty,min=1,max=5"`
	OwnerID             *uint  `json:"owner_id"`
	AssessorID          *uint  `json:"assessor_id"`
	AssignedToID        *uint  `json:"assigned_to_id"`
	RiskTypeID          *uint  `json:"risk_type_id"`
	ControlIDs          []uint `json:"control_ids"`
}

// рейтинги в запросах не принимаются вообще: даже если клиент их
// пришлёт, поля биндинга для них отсутствуют и значения выводятся заново

type riskUpdateRequest struct {
	Description         *string `json:"description"`
	InherentProbability *int    `json:"inherent_probability" binding:"omitempty,min=1,max=5"`
	InherentImpact      *int    `json:"inherent_impact" binding:"omitempty,min=1,max=5"`
	ResidualProbability *int    `json:"residual_probability" binding:"omitempty,min=1,max=5"`
	ResidualImpact      *int    `json:"residual_impact" binding:"omitempty,min=1,max=5"`
	OwnerID             *uint   `json:"owner_id"`
	AssessorID          *uint   `json:"assessor_id"`
	AssignedToID        *uint   `json:"assigned_to_id"`
	RiskTypeID          *uint   `json:"risk_type_id"`
	ControlIDs          *[]uint `json:"control_ids"`
}

// ====== ПРОВЕРКИ ССЫЛОК ======

// loadControls грузит контроли по id; неизвестный id — NotFound.
func loadControls(ids []uint) ([]models.Control, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	var controls []models.Control
	if err := database.DB.Find(&controls, ids).Error; err != nil {
		return nil, false
	}
	if len(controls) != len(ids) {
		return nil, false
	}
	return controls, true
}

// checkAssignedTo — назначать можно только пользователя с ролью ревьюера (L2).
// Проверка только в момент назначения, задним числом не пересматривается.
func checkAssignedTo(c *gin.Context, id uint) bool {
	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": gin.H{"assigned_to_id": "unknown user"},
		})
		return false
	}
	if u.Role != models.RoleL2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": gin.H{"assigned_to_id": "assigned user must have reviewer role (L2)"},
		})
		return false
	}
	return true
}

func checkUserRef(c *gin.Context, field string, id uint) bool {
	var count int64
	database.DB.Model(&models.User{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": gin.H{field: "unknown user"},
		})
		return false
	}
	return true
}

// ====== CRUD ======

func CreateRisk(c *gin.Context) {
	user, _ := currentUser(c)

	var req riskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if req.OwnerID != nil && !checkUserRef(c, "owner_id", *req.OwnerID) {
		return
	}
	if req.AssessorID != nil && !checkUserRef(c, "assessor_id", *req.AssessorID) {
		return
	}
	if req.AssignedToID != nil && !checkAssignedTo(c, *req.AssignedToID) {
		return
	}
	if req.RiskTypeID != nil {
		var count int64
		database.DB.Model(&models.RiskType{}).Where("id = ?", *req.RiskTypeID).Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "risk type not found"})
			return
		}
	}

	controls, ok := loadControls(req.ControlIDs)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
		return
	}

	risk := models.Risk{
		Description:         strings.TrimSpace(req.Description),
		InherentProbability: req.InherentProbability,
		InherentImpact:      req.InherentImpact,
		ResidualProbability: req.ResidualProbability,
		ResidualImpact:      req.ResidualImpact,
		RiskOwnerID:         req.OwnerID,
		AssessorID:          req.AssessorID,
		AssignedToID:        req.AssignedToID,
		RiskTypeID:          req.RiskTypeID,
		Controls:            controls,
	}

	// рейтинги выводятся до сохранения; сущность и рейтинги
	// пишутся одной транзакцией, частичное состояние недостижимо
	risk.RecalculateRatings()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Controls.*").Create(&risk).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save risk"})
		return
	}

	database.CreateAuditLog(user.ID, "risk", risk.ID, "create", "Создан риск: "+risk.Description)

	risk.Decorate()
	c.JSON(http.StatusCreated, risk)
}

func GetRisk(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk id"})
		return
	}

	var risk models.Risk
	err := riskQuery(database.DB).First(&risk, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk not found"})
		return
	}

	risk.Decorate()
	c.JSON(http.StatusOK, risk)
}

func UpdateRisk(c *gin.Context) {
	user, _ := currentUser(c)

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk id"})
		return
	}

	var risk models.Risk
	if err := database.DB.First(&risk, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk not found"})
		return
	}

	var req riskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if req.OwnerID != nil && !checkUserRef(c, "owner_id", *req.OwnerID) {
		return
	}
	if req.AssessorID != nil && !checkUserRef(c, "assessor_id", *req.AssessorID) {
		return
	}
	if req.AssignedToID != nil && !checkAssignedTo(c, *req.AssignedToID) {
		return
	}

	var controls []models.Control
	if req.ControlIDs != nil {
		controls, ok = loadControls(*req.ControlIDs)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
			return
		}
	}

	if req.Description != nil {
		risk.Description = strings.TrimSpace(*req.Description)
	}
	if req.InherentProbability != nil {
		risk.InherentProbability = *req.InherentProbability
	}
	if req.InherentImpact != nil {
		risk.InherentImpact = *req.InherentImpact
	}
	if req.ResidualProbability != nil {
		risk.ResidualProbability = req.ResidualProbability
	}
	if req.ResidualImpact != nil {
		risk.ResidualImpact = req.ResidualImpact
	}
	if req.OwnerID != nil {
		risk.RiskOwnerID = req.OwnerID
	}
	if req.AssessorID != nil {
		risk.AssessorID = req.AssessorID
	}
	if req.AssignedToID != nil {
		risk.AssignedToID = req.AssignedToID
	}
	if req.RiskTypeID != nil {
		risk.RiskTypeID = req.RiskTypeID
	}

	// пересчёт на каждом обновлении, независимо от того,
	// какие поля менялись
	risk.RecalculateRatings()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Controls").Save(&risk).Error; err != nil {
			return err
		}
		if req.ControlIDs != nil {
			return tx.Model(&risk).Association("Controls").Replace(&controls)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save risk"})
		return
	}

	database.CreateAuditLog(user.ID, "risk", risk.ID, "update", "Изменён риск: "+risk.Description)

	if err := riskQuery(database.DB).First(&risk, risk.ID).Error; err == nil {
		risk.Decorate()
	}
	c.JSON(http.StatusOK, risk)
}

func DeleteRisk(c *gin.Context) {
	user, _ := currentUser(c)

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk id"})
		return
	}

	var risk models.Risk
	if err := database.DB.First(&risk, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk not found"})
		return
	}

	// жёсткое удаление вместе со связями на контроли
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&risk).Association("Controls").Clear(); err != nil {
			return err
		}
		return tx.Delete(&risk).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete risk"})
		return
	}

	database.CreateAuditLog(user.ID, "risk", risk.ID, "delete", "Удалён риск: "+risk.Description)

	c.Status(http.StatusNoContent)
}

// ====== СПИСКИ ======

func riskQuery(db *gorm.DB) *gorm.DB {
	return db.
		Preload("RiskOwner").
		Preload("Assessor").
		Preload("AssignedTo").
		Preload("RiskType").
		Preload("Controls").
		Preload("Controls.Owner")
}

// filteredRisks применяет query-фильтры списка рисков.
func filteredRisks(c *gin.Context) *gorm.DB {
	q := riskQuery(database.DB)

	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if owner := c.Query("owner"); owner != "" {
		q = q.Where("risk_owner_id = ?", owner)
	}
	if assessor := c.Query("assessor"); assessor != "" {
		q = q.Where("assessor_id = ?", assessor)
	}
	if riskType := c.Query("risk_type"); riskType != "" {
		q = q.Where("risk_type_id = ?", riskType)
	}

	return q.Order("created_at desc")
}

func ListRisks(c *gin.Context) {
	var risks []models.Risk
	filteredRisks(c).Find(&risks)

	for i := range risks {
		risks[i].Decorate()
	}
	c.JSON(http.StatusOK, risks)
}

// MyRisks — риски, где текущий пользователь владелец или оценщик.
func MyRisks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var risks []models.Risk
	filteredRisks(c).Scopes(policy.OwnedOrAssessedRisks(user)).Find(&risks)

	for i := range risks {
		risks[i].Decorate()
	}
	c.JSON(http.StatusOK, risks)
}

type matrixPoint struct {
	X    *int         `json:"x"`
	Y    *int         `json:"y"`
	Risk *models.Risk `json:"risk"`
}

// RiskMatrix — точки (вероятность, влияние) для матриц риска.
func RiskMatrix(c *gin.Context) {
	var risks []models.Risk
	filteredRisks(c).Find(&risks)

	inherent := make([]matrixPoint, 0, len(risks))
	residual := make([]matrixPoint, 0, len(risks))

	for i := range risks {
		risks[i].Decorate()
		p := risks[i].InherentProbability
		im := risks[i].InherentImpact
		inherent = append(inherent, matrixPoint{X: &p, Y: &im, Risk: &risks[i]})
		residual = append(residual, matrixPoint{
			X:    risks[i].ResidualProbability,
			Y:    risks[i].ResidualImpact,
			Risk: &risks[i],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"inherent": inherent,
		"residual": residual,
	})
}
