package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (ctrl *Controller) ListFlavors(c *gin.Context) {
	flavors, err := ctrl.Service.ListFlavors(c.Request.Context(), authToken(c))
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flavors": flavors})
}

func (ctrl *Controller) GetFlavorByID(c *gin.Context) {
	flavor, err := ctrl.Service.GetFlavor(c.Request.Context(), authToken(c), c.Param("id"))
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flavor)
}
