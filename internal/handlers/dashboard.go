package handlers

import (
	"net/http"

	"prudence/internal/database"
	"prudence/internal/models"
	"prudence/internal/policy"

	"github.com/gin-gonic/gin"
)

type dashboardStats struct {
	TotalRisks         int64 `json:"total_risks"`
	HighRisks          int64 `json:"high_risks"`
	PendingAssessments int64 `json:"pending_assessments"`
	MyRisks            int64 `json:"my_risks"`
	MyControls         int64 `json:"my_controls"`
}

// DashboardStats — сводные счётчики для дашборда.
func DashboardStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var stats dashboardStats

	database.DB.Model(&models.Risk{}).Count(&stats.TotalRisks)

	database.DB.Model(&models.Risk{}).
		Scopes(policy.HighResidualRisks).
		Count(&stats.HighRisks)

	// счётчик ожидающих оценок только для ревьюеров
	if user.Role == models.RoleL2 {
		database.DB.Model(&models.RiskAssessment{}).
			Scopes(policy.PendingAssessments(user)).
			Count(&stats.PendingAssessments)
	}

	database.DB.Model(&models.Risk{}).
		Scopes(policy.OwnedOrAssessedRisks(user)).
		Count(&stats.MyRisks)

	database.DB.Model(&models.Control{}).
		Scopes(policy.OwnedControls(user)).
		Count(&stats.MyControls)

	c.JSON(http.StatusOK, stats)
}
