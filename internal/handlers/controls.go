package handlers

import (
	"net/http"
	"strings"

	"prudence/internal/database"
	"prudence/internal/models"
	"prudence/internal/policy"
	"prudence/internal/scoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type controlCreateRequest struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Description string  `json:"description"`
	// закрытый набор значений, см. scoring.DescribeEffectiveness
	Effectiveness float64 `json:"effectiveness" binding:"eq=0|eq=0.5|eq=1"`
	OwnerID       *uint   `json:"owner_id"`
}

type controlUpdateRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=3"`
	Description   *string  `json:"description"`
	Effectiveness *float64 `json:"effectiveness" binding:"omitempty,eq=0|eq=0.5|eq=1"`
	OwnerID       *uint    `json:"owner_id"`
}

func CreateControl(c *gin.Context) {
	user, _ := currentUser(c)

	var req controlCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if req.OwnerID != nil && !checkUserRef(c, "owner_id", *req.OwnerID) {
		return
	}

	control := models.Control{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Effectiveness: req.Effectiveness,
		OwnerID:       req.OwnerID,
	}

	if err := database.DB.Create(&control).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save control"})
		return
	}

	database.CreateAuditLog(user.ID, "control", control.ID, "create", "Создан контроль: "+control.Name)

	control.EffectivenessDisplay = scoring.DescribeEffectiveness(control.Effectiveness)
	c.JSON(http.StatusCreated, control)
}

func GetControl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid control id"})
		return
	}

	var control models.Control
	if err := database.DB.Preload("Owner").First(&control, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
		return
	}

	control.EffectivenessDisplay = scoring.DescribeEffectiveness(control.Effectiveness)
	c.JSON(http.StatusOK, control)
}

func UpdateControl(c *gin.Context) {
	user, _ := currentUser(c)

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid control id"})
		return
	}

	var control models.Control
	if err := database.DB.First(&control, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
		return
	}

	var req controlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if req.OwnerID != nil && !checkUserRef(c, "owner_id", *req.OwnerID) {
		return
	}

	if req.Name != nil {
		control.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		control.Description = strings.TrimSpace(*req.Description)
	}
	if req.Effectiveness != nil {
		control.Effectiveness = *req.Effectiveness
	}
	if req.OwnerID != nil {
		control.OwnerID = req.OwnerID
	}

	if err := database.DB.Save(&control).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save control"})
		return
	}

	database.CreateAuditLog(user.ID, "control", control.ID, "update", "Изменён контроль: "+control.Name)

	control.EffectivenessDisplay = scoring.DescribeEffectiveness(control.Effectiveness)
	c.JSON(http.StatusOK, control)
}

func DeleteControl(c *gin.Context) {
	user, _ := currentUser(c)

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid control id"})
		return
	}

	var control models.Control
	if err := database.DB.First(&control, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found"})
		return
	}

	// жёсткое удаление; связь объявлена со стороны рисков,
	// поэтому join-таблицу чистим напрямую
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM risk_controls WHERE control_id = ?", control.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&control).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete control"})
		return
	}

	database.CreateAuditLog(user.ID, "control", control.ID, "delete", "Удалён контроль: "+control.Name)

	c.Status(http.StatusNoContent)
}

// filteredControls применяет query-фильтры списка контролей.
func filteredControls(c *gin.Context) *gorm.DB {
	q := database.DB.Preload("Owner")

	if search := c.Query("search"); search != "" {
		pat := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pat, pat)
	}
	if owner := c.Query("owner"); owner != "" {
		q = q.Where("owner_id = ?", owner)
	}
	if eff := c.Query("effectiveness"); eff != "" {
		q = q.Where("effectiveness = ?", eff)
	}

	return q.Order("created_at desc")
}

func ListControls(c *gin.Context) {
	var controls []models.Control
	filteredControls(c).Find(&controls)

	for i := range controls {
		controls[i].EffectivenessDisplay = scoring.DescribeEffectiveness(controls[i].Effectiveness)
	}
	c.JSON(http.StatusOK, controls)
}

// MyControls — контроли, где текущий пользователь владелец.
func MyControls(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var controls []models.Control
	filteredControls(c).Scopes(policy.OwnedControls(user)).Find(&controls)

	for i := range controls {
		controls[i].EffectivenessDisplay = scoring.DescribeEffectiveness(controls[i].Effectiveness)
	}
	c.JSON(http.StatusOK, controls)
}
