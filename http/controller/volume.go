package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/http/controller/dto"
	"github.com/plumstack/ostack-console/service"
)

func (ctrl *Controller) CreateVolume(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateVolumeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Volume] creating volume '%s' (%dGB)", req.Name, req.Size)

	view, err := ctrl.Service.CreateVolume(ctx, authToken(c), service.CreateVolumeRequest{
		Name:        req.Name,
		Description: req.Description,
		Size:        req.Size,
	})
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewVolumeResponse(view))
}

func (ctrl *Controller) ListVolumes(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	views, err := ctrl.Service.ListVolumes(c.Request.Context(), authToken(c), query)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"volumes": dto.NewVolumeResponses(views)})
}

func (ctrl *Controller) GetVolumeByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	view, err := ctrl.Service.GetVolume(c.Request.Context(), authToken(c), id)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVolumeResponse(view))
}

func (ctrl *Controller) UpdateVolumeByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.UpdateVolumeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	volume, err := ctrl.Service.UpdateVolumeInfo(ctx, authToken(c), id, service.UpdateVolumeRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, volume)
}

func (ctrl *Controller) DeleteVolumeByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Volume] deleting volume %s", id)

	if err := ctrl.Service.DeleteVolume(ctx, authToken(c), id); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) ExtendVolumeByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.ExtendVolumeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Volume] extending volume %s to %dGB", id, req.NewSize)

	if err := ctrl.Service.ExtendVolumeSize(ctx, authToken(c), id, req.NewSize); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
