package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/types"
)

type RecordStateChangeResponse struct {
	ID uint `json:"id"`
}

// @Summary      Record State Change
// @Description  Appends one audit row for an inspection order/appointment transition.
// @Tags         Integration
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statechange.RecordStateChangeRequest true "State change"
// @Success      201  {object}  handlers.RespRecordStateChange
// @Failure      400  {object}  handlers.RespOK
// @Failure      422  {object}  handlers.RespOK
// @Failure      401  {object}  response.GateFailure
// @Failure      429  {object}  response.GateFailure
// @Router       /api/v1/integration/state_changes [post]
func ApiRecordStateChange(rec statechange.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statechange.RecordStateChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := rec.RecordStateChange(c.Request.Context(), &req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(&RecordStateChangeResponse{ID: id}))
	}
}

// @Summary      State History
// @Description  Returns the audit history of an order/appointment pair, oldest first. Soft-deleted rows are excluded.
// @Tags         Integration
// @Produce      json
// @Security     BearerAuth
// @Param        order_id        query  int     true   "Inspection order id"
// @Param        appointment_id  query  int     true   "Appointment id"
// @Param        change_type     query  string  false  "Comma separated change types"
// @Param        from            query  string  false  "RFC3339 or YYYY-MM-DD lower bound on created_at"
// @Param        to              query  string  false  "RFC3339 or YYYY-MM-DD upper bound on created_at"
// @Success      200  {object}  handlers.RespStateChanges
// @Router       /api/v1/integration/state_changes/history [get]
func ApiStateHistory(rec statechange.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseUintQuery(c, "order_id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		appointmentID, err := parseUintQuery(c, "appointment_id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter := &statechange.HistoryFilter{}
		for _, raw := range c.QueryArray("change_type") {
			for _, ct := range strings.Split(raw, ",") {
				if ct = strings.TrimSpace(ct); ct != "" {
					filter.ChangeTypes = append(filter.ChangeTypes, models.ChangeType(ct))
				}
			}
		}
		if filter.From, err = parseTimeQuery(c, "from", false); err != nil {
			badRequest(c, err.Error())
			return
		}
		if filter.To, err = parseTimeQuery(c, "to", true); err != nil {
			badRequest(c, err.Error())
			return
		}

		rows, err := rec.GetHistory(c.Request.Context(), orderID, appointmentID, filter)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if rows == nil {
			rows = []*models.StateChange{}
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Get State Change
// @Description  Direct lookup by id. Soft-deleted rows are returned with deleted_at set.
// @Tags         Integration
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "State change id"
// @Success      200  {object}  handlers.RespStateChange
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/integration/state_changes/{id} [get]
func ApiGetStateChange(rec statechange.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseUintParam(c, "id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		row, err := rec.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(row))
	}
}

// @Summary      Soft Delete State Change
// @Description  Marks the row deleted. It disappears from history but stays readable by id.
// @Tags         Integration
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "State change id"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/integration/state_changes/{id} [delete]
func ApiDeleteStateChange(rec statechange.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseUintParam(c, "id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := rec.SoftDelete(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterStateChangeRoutes(r gin.IRouter, rec statechange.Recorder, log *zap.SugaredLogger) {
	r.POST("/state_changes", ApiRecordStateChange(rec, log))
	r.GET("/state_changes/history", ApiStateHistory(rec, log))
	r.GET("/state_changes/:id", ApiGetStateChange(rec, log))
	r.DELETE("/state_changes/:id", ApiDeleteStateChange(rec, log))
}

func parseUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, &statechange.ValidationError{Field: name, Reason: "is required"}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, &statechange.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return uint(v), nil
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, &statechange.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return uint(v), nil
}

// parseTimeQuery accepts RFC3339 or a plain date. A plain date used as an
// upper bound covers the whole day.
func parseTimeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := types.ParseDateBound(raw, endOfDay)
	if err != nil {
		return nil, &statechange.ValidationError{Field: name, Reason: "must be RFC3339 or YYYY-MM-DD"}
	}
	return lo.ToPtr(t), nil
}
