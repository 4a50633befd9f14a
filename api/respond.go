package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/skyline/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// resultStatus maps a service outcome to the HTTP status: field errors are
// 422, a business rule failure is 409.
func resultStatus(fieldErrors map[string]string, globalError string, ok int) int {
	switch {
	case len(fieldErrors) > 0:
		return http.StatusUnprocessableEntity
	case globalError != "":
		return http.StatusConflict
	default:
		return ok
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// fail writes err as 404 for missing records and 500 otherwise. Internal
// errors are logged, not echoed.
func fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	zap.L().Error("request failed",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
