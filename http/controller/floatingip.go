package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/http/controller/dto"
)

func (ctrl *Controller) CreateFloatingip(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateFloatingipRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Floatingip] allocating floating ip")

	view, err := ctrl.Service.CreateFloatingip(ctx, authToken(c), req.Description)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewFloatingipResponse(view))
}

func (ctrl *Controller) ListFloatingips(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	views, err := ctrl.Service.ListFloatingips(c.Request.Context(), authToken(c), query)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"floatingips": dto.NewFloatingipResponses(views)})
}

func (ctrl *Controller) GetFloatingipByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	view, err := ctrl.Service.GetFloatingip(c.Request.Context(), authToken(c), id)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFloatingipResponse(view))
}

func (ctrl *Controller) UpdateFloatingipByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.UpdateFloatingipRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	floatingip, err := ctrl.Service.UpdateFloatingipInfo(ctx, authToken(c), id, req.Description)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, floatingip)
}

func (ctrl *Controller) DeleteFloatingipByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Floatingip] releasing floating ip %s", id)

	if err := ctrl.Service.DeleteFloatingip(ctx, authToken(c), id); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) UpdateFloatingipPort(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.UpdateFloatingipPortRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	if req.PortID != nil {
		ctrl.Infra.Logger.InfoWithContextf(ctx, "[Floatingip] binding %s to port %s", id, req.PortID)
	} else {
		ctrl.Infra.Logger.InfoWithContextf(ctx, "[Floatingip] unbinding %s", id)
	}

	floatingip, err := ctrl.Service.UpdateFloatingipPort(ctx, authToken(c), id, req.PortID)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, floatingip)
}
