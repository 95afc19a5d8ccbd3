package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adisurya/sims-api/internal/middleware"
	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

func queryInt64(c *gin.Context, name string) int64 {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}

func currentClaims(c *gin.Context) (*models.JWTClaims, error) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}
