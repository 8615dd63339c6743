package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "altvest/internal/errors"
	"altvest/internal/logger"
	"altvest/internal/middleware"
	"altvest/internal/models"
	"altvest/internal/services"
	"altvest/internal/uuid"
)

// ErrorResponse documents the error envelope for Swagger.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// getCaller extracts the authenticated caller (user ID and role) from the
// Gin context. Returns ErrUnauthorized if the auth middleware did not run.
func getCaller(c *gin.Context) (services.Caller, error) {
	userID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return services.Caller{}, apperrors.ErrUnauthorized
	}
	role, exists := c.Get(middleware.ContextRole)
	if !exists {
		return services.Caller{}, apperrors.ErrUnauthorized
	}
	return services.Caller{ID: userID.(string), Role: role.(models.Role)}, nil
}

// parsePathID validates a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
