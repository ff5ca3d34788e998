package handlers

import (
	"net/http"

	"prudence/internal/database"
	"prudence/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== СПРАВОЧНИКИ (ТОЛЬКО ЧТЕНИЕ) ======

func ListRiskTypes(c *gin.Context) {
	var types []models.RiskType
	database.DB.Order("name asc").Find(&types)
	c.JSON(http.StatusOK, types)
}

func GetRiskType(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk type id"})
		return
	}

	var rt models.RiskType
	if err := database.DB.First(&rt, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "risk type not found"})
		return
	}
	c.JSON(http.StatusOK, rt)
}

func ListActions(c *gin.Context) {
	var actions []models.Action
	database.DB.Preload("Owner").Order("name asc").Find(&actions)
	c.JSON(http.StatusOK, actions)
}

func GetAction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}

	var action models.Action
	if err := database.DB.Preload("Owner").First(&action, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "action not found"})
		return
	}
	c.JSON(http.StatusOK, action)
}
