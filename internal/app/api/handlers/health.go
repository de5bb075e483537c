package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

// @Summary      Health check
// @Description  Returns service status and database reachability
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespHealth
// @Failure      503  {object}  handlers.RespHealth
// @Router       /healthz [get]
func Healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := map[string]string{"status": "ok", "database": "ok"}
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				c.JSON(http.StatusServiceUnavailable, response.OKT(status))
				return
			}
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/healthz", Healthz(db))
}
