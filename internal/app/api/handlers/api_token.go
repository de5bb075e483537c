package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/response"
)

type IssueAPITokenRequest struct {
	Name       string   `json:"name" binding:"required"`
	Source     string   `json:"source" binding:"required"`
	AllowedIPs []string `json:"allowed_ips"`
	// Zero or omitted issues a token without expiry.
	TTLSeconds int64 `json:"ttl_seconds"`
}

// IssueAPITokenResponse carries the plaintext token. It is returned once and
// cannot be read back later.
type IssueAPITokenResponse struct {
	Token    string           `json:"token"`
	APIToken *models.APIToken `json:"api_token"`
}

// @Summary      Issue API Token (Admin)
// @Description  Creates a registry token for an integration. The plaintext token is only present in this response.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.IssueAPITokenRequest true "Token owner, allowed client IPs and lifetime"
// @Success      201  {object}  handlers.RespIssueAPIToken
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/api_tokens [post]
func ApiIssueAPIToken(reg apitoken.TokenRegistry, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IssueAPITokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		plain, row, err := reg.Issue(c.Request.Context(), &apitoken.IssueRequest{
			Name:       req.Name,
			Source:     req.Source,
			AllowedIPs: req.AllowedIPs,
			TTL:        time.Duration(req.TTLSeconds) * time.Second,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(&IssueAPITokenResponse{Token: plain, APIToken: row}))
	}
}

// @Summary      Revoke API Token (Admin)
// @Description  Revokes a registry token. Requests carrying it are rejected from then on.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "API token id"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/api_tokens/{id} [delete]
func ApiRevokeAPIToken(reg apitoken.TokenRegistry, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.Revoke(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAPITokenRoutes(r gin.IRouter, reg apitoken.TokenRegistry, log *zap.SugaredLogger) {
	r.POST("/api_tokens", ApiIssueAPIToken(reg, log))
	r.DELETE("/api_tokens/:id", ApiRevokeAPIToken(reg, log))
}
