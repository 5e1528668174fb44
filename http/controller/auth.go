package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plumstack/ostack-console/http/controller/dto"
	"github.com/plumstack/ostack-console/utils"
)

const sessionCookieName = "access_token"

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	token, err := ctrl.Service.Login(ctx, req.Username, req.Password)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Auth] login failed for '%s': %v", req.Username, err)
		ctrl.abortWithError(c, err)
		return
	}

	sessionToken, err := utils.CreateSessionToken(token.Username, token.Token, token.ExpiresAt, ctrl.Config.EnvConfig)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	c.SetCookie(sessionCookieName, sessionToken, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, dto.LoginResponseDTO{
		Username:  token.Username,
		ExpiresAt: token.ExpiresAt,
	})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) Healthcheck(c *gin.Context) {
	if err := ctrl.Service.Healthcheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
