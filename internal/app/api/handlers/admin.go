package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statistics"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

// @Summary      List State Changes (Admin)
// @Description  Retrieves a paginated and filterable list of inspection state changes.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statechange.ScanStateChangesRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListStateChanges
// @Router       /api/v1/admin/list_state_changes [post]
func ApiListStateChanges(rec statechange.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statechange.ScanStateChangesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := rec.ScanStateChanges(c.Request.Context(), &req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get State Change Statistics (Admin)
// @Description  Daily counts of state changes by change type and decision state.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statistics.StateChangeStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStateChangeStatistic
// @Router       /api/v1/admin/state_change_statistic [post]
func ApiGetStateChangeStatistic(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StateChangeStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.GetStateChangeStatistic(c.Request.Context(), &req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, rec statechange.Recorder, stats *statistics.Service, log *zap.SugaredLogger) {
	r.POST("/list_state_changes", ApiListStateChanges(rec, log))
	r.POST("/state_change_statistic", ApiGetStateChangeStatistic(stats, log))
}
