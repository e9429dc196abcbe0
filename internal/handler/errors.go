package handler

import (
	"net/http"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/middleware"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[service.ErrorKind]int{
	service.KindUnauthorized:           http.StatusUnauthorized,
	service.KindForbidden:              http.StatusForbidden,
	service.KindInvalidInput:           http.StatusBadRequest,
	service.KindInvalidState:           http.StatusConflict,
	service.KindInvalidAction:          http.StatusConflict,
	service.KindNotFound:               http.StatusNotFound,
	service.KindCancellationFailed:     http.StatusConflict,
	service.KindPersistenceUnavailable: http.StatusServiceUnavailable,
}

// statusFor maps a service error to an HTTP status; foreign errors are 500s.
func statusFor(err error) int {
	if code, ok := statusByKind[service.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		// Store details go to the log, not the client.
		_ = c.Error(err)
		msg = http.StatusText(code)
	}
	c.JSON(code, response.Error(code, msg))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

func actorFrom(c *gin.Context) *service.Actor {
	return middleware.CurrentActor(c)
}
