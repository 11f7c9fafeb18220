package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bscf_accounts/internal/config"
)

type HealthController struct {
	DB *gorm.DB
}

// Up answers 200 while the database is reachable and 503 otherwise.
func (hc *HealthController) Up(c *gin.Context) {
	if err := config.Ping(hc.DB); err != nil {
		logrus.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
