package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (ctrl *Controller) ListImages(c *gin.Context) {
	images, err := ctrl.Service.ListImages(c.Request.Context(), authToken(c))
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (ctrl *Controller) GetImageByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.abortValidation(c, err)
		return
	}
	image, err := ctrl.Service.GetImage(c.Request.Context(), authToken(c), id)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, image)
}
