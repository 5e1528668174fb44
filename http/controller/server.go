package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/http/controller/dto"
	"github.com/plumstack/ostack-console/service"
)

func (ctrl *Controller) CreateServer(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateServerRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Server] invalid create payload: %v", err)
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Server] creating server '%s' with flavor %s", req.Name, req.FlavorID)

	view, err := ctrl.Service.CreateServerWithRootVolume(ctx, authToken(c), service.CreateServerRequest{
		Name:        req.Name,
		Description: req.Description,
		FlavorID:    req.FlavorID,
		Volume: service.CreateRootVolumeRequest{
			Name:    req.Volume.Name,
			Size:    req.Volume.Size,
			ImageID: req.Volume.ImageID,
		},
	})
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewServerResponse(view))
}

func (ctrl *Controller) ListServers(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	views, err := ctrl.Service.ListServers(c.Request.Context(), authToken(c), query)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": dto.NewServerResponses(views)})
}

func (ctrl *Controller) GetServerByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	view, err := ctrl.Service.GetServer(c.Request.Context(), authToken(c), id)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewServerResponse(view))
}

func (ctrl *Controller) UpdateServerByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.UpdateServerRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	server, err := ctrl.Service.UpdateServerInfo(ctx, authToken(c), id, service.UpdateServerRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

func (ctrl *Controller) DeleteServerByID(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Server] deleting server %s", id)

	if err := ctrl.Service.DeleteServer(ctx, authToken(c), id); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) RunServerAction(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.ServerPowerActionRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Server] %s on server %s", req.Action, id)

	if err := ctrl.Service.RunServerPowerAction(ctx, authToken(c), id, client.PowerAction(req.Action)); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (ctrl *Controller) CreateServerConsole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	url, err := ctrl.Service.CreateServerConsole(c.Request.Context(), authToken(c), id)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ServerConsoleResponseDTO{URL: url})
}

func (ctrl *Controller) AttachServerVolume(c *gin.Context) {
	ctx := c.Request.Context()
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	var req dto.AttachVolumeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Server] attaching volume %s to server %s", req.VolumeID, serverID)

	if err := ctrl.Service.AttachVolume(ctx, authToken(c), serverID, req.VolumeID); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (ctrl *Controller) DetachServerVolume(c *gin.Context) {
	ctx := c.Request.Context()
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	volumeID, err := uuid.Parse(c.Param("volume_id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Server] detaching volume %s from server %s", volumeID, serverID)

	if err := ctrl.Service.DetachVolume(ctx, authToken(c), serverID, volumeID); err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
