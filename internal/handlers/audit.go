package handlers

import (
	"net/http"

	"prudence/internal/database"
	"prudence/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs — журнал аудита, доступ только для L3 (гейт в роутере).
func ListAuditLogs(c *gin.Context) {
	q := database.DB.Preload("User")

	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}

	var logs []models.AuditLog
	q.Order("created_at desc").Limit(200).Find(&logs)

	c.JSON(http.StatusOK, logs)
}
