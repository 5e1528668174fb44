package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/repository"
)

var reservedQueryParams = map[string]bool{
	"page":     true,
	"per_page": true,
	"sort_by":  true,
	"order_by": true,
}

// parseListQuery reads the shared list grammar from the query string. Every
// parameter outside the reserved set is treated as an "op:value" filter; the
// repository validates fields and operators against its allow-lists.
func parseListQuery(c *gin.Context) (repository.ListQuery, error) {
	query := repository.ListQuery{
		SortBy:  c.Query("sort_by"),
		OrderBy: c.Query("order_by"),
		Filters: map[string]string{},
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return query, apperror.Validation(fmt.Sprintf("page %q must be a positive integer", raw))
		}
		query.Page = page
	}
	if raw := c.Query("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return query, apperror.Validation(fmt.Sprintf("per_page %q must be a positive integer", raw))
		}
		query.PerPage = perPage
	}
	for key, values := range c.Request.URL.Query() {
		if reservedQueryParams[key] || len(values) == 0 {
			continue
		}
		query.Filters[key] = values[0]
	}
	return query, nil
}

// abortWithError translates service failures into the client-facing
// {error_type, message, detail} body. Remote 400s surface as internal
// faults: the remote rejecting our request shape is our bug, not the
// caller's.
func (ctrl *Controller) abortWithError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "internal failure: %s", appErr.Reason)
		}
		c.AbortWithStatusJSON(appErr.Status, gin.H{
			"error_type": string(appErr.Reason),
			"message":    reasonMessage(appErr.Reason),
			"detail":     appErr.Detail,
		})
		return
	}

	var clientErr *client.Error
	if errors.As(err, &clientErr) {
		if clientErr.StatusCode == http.StatusBadRequest {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "remote rejected request as malformed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error_type": string(apperror.ReasonInternal),
				"message":    "internal error",
			})
			return
		}
		c.AbortWithStatusJSON(clientErr.StatusCode, gin.H{
			"error_type": "remote_service_error",
			"message":    "remote control plane returned an error",
			"errors":     clientErr.Items,
		})
		return
	}

	ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "unhandled failure")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error_type": string(apperror.ReasonInternal),
		"message":    "internal error",
	})
}

func reasonMessage(reason apperror.Reason) string {
	return strings.ReplaceAll(string(reason), "_", " ")
}

func (ctrl *Controller) abortValidation(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error_type": string(apperror.ReasonValidationFailed),
		"message":    reasonMessage(apperror.ReasonValidationFailed),
		"detail":     err.Error(),
	})
}

func authToken(c *gin.Context) string {
	return c.GetString("auth_token")
}
