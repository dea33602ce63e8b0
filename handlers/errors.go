package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialnet/services"
	"socialnet/utils"
)

// respondError maps service errors to status codes. Unknown errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.BadRequest(c, vErr.Message)
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrRequestNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrInvalidAction):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		utils.TooManyRequests(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, utils.ErrInvalidToken):
		utils.Unauthorized(c, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
