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

type assessmentCreateRequest struct {
	RiskID           uint   `json:"risk_id" binding:"required"`
	AssessorID       uint   `json:"assessor_id" binding:"required"`
	AssessorComments string `json:"assessor_comments"`
}

type assessmentUpdateRequest struct {
	Status           *string `json:"status" binding:"omitempty,oneof=Pending Accepted Rejected"`
	AssessorComments *string `json:"assessor_comments"`

	// риск и оценщик фиксируются при создании; попытки их поменять
	// молча игнорируются, как у отключённых полей формы
	RiskID     *uint `json:"risk_id"`
	AssessorID *uint `json:"assessor_id"`
}

func assessmentQuery(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Risk").
		Preload("Risk.Controls").
		Preload("Risk.RiskOwner").
		Preload("Assessor")
}

func CreateAssessment(c *gin.Context) {
	user, _ := currentUser(c)

	var req assessmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	var risk models.Risk
	if err := database.DB.First(&risk, req.RiskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk not found"})
		return
	}

	if !checkUserRef(c, "assessor_id", req.AssessorID) {
		return
	}

	// начальный статус всегда Pending, что бы ни прислал клиент
	assessment := models.RiskAssessment{
		RiskID:           req.RiskID,
		AssessorID:       req.AssessorID,
		Status:           models.AssessmentPending,
		AssessorComments: strings.TrimSpace(req.AssessorComments),
	}

	if err := database.DB.Create(&assessment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save assessment"})
		return
	}

	database.CreateAuditLog(user.ID, "assessment", assessment.ID, "create",
		"Создана оценка риска: "+risk.Description)

	assessmentQuery(database.DB).First(&assessment, assessment.ID)
	assessment.Risk.Decorate()
	c.JSON(http.StatusCreated, assessment)
}

func GetAssessment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, idOK := parseID(c)
	if !idOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment id"})
		return
	}

	// чужие оценки не отдаём и не подтверждаем их существование
	var assessment models.RiskAssessment
	err := assessmentQuery(database.DB).
		Scopes(policy.VisibleAssessments(user)).
		First(&assessment, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	assessment.Risk.Decorate()
	c.JSON(http.StatusOK, assessment)
}

func UpdateAssessment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, idOK := parseID(c)
	if !idOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment id"})
		return
	}

	var assessment models.RiskAssessment
	if err := database.DB.First(&assessment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	// статус меняет только сам оценщик либо L3
	if user.Role != models.RoleL3 && assessment.AssessorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req assessmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	statusChanged := false
	if req.Status != nil && models.AssessmentStatus(*req.Status) != assessment.Status {
		assessment.Status = models.AssessmentStatus(*req.Status)
		statusChanged = true
	}
	if req.AssessorComments != nil {
		assessment.AssessorComments = strings.TrimSpace(*req.AssessorComments)
	}
	// req.RiskID и req.AssessorID сознательно не применяются

	if err := database.DB.Save(&assessment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save assessment"})
		return
	}

	if statusChanged {
		database.CreateAuditLog(user.ID, "assessment", assessment.ID, "status_change",
			"Статус оценки: "+string(assessment.Status))
	} else {
		database.CreateAuditLog(user.ID, "assessment", assessment.ID, "update", "Изменена оценка")
	}

	assessmentQuery(database.DB).First(&assessment, assessment.ID)
	assessment.Risk.Decorate()
	c.JSON(http.StatusOK, assessment)
}

func DeleteAssessment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, idOK := parseID(c)
	if !idOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment id"})
		return
	}

	var assessment models.RiskAssessment
	if err := database.DB.First(&assessment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	if user.Role != models.RoleL3 && assessment.AssessorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := database.DB.Delete(&assessment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete assessment"})
		return
	}

	database.CreateAuditLog(user.ID, "assessment", assessment.ID, "delete", "Удалена оценка")

	c.Status(http.StatusNoContent)
}

func ListAssessments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	q := assessmentQuery(database.DB).Scopes(policy.VisibleAssessments(user))

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if assessor := c.Query("assessor"); assessor != "" {
		q = q.Where("assessor_id = ?", assessor)
	}

	var assessments []models.RiskAssessment
	q.Order("created_at desc").Find(&assessments)

	for i := range assessments {
		assessments[i].Risk.Decorate()
	}
	c.JSON(http.StatusOK, assessments)
}
