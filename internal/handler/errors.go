package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/service"
	"ProvinceMap-App/internal/eventloop"
	"ProvinceMap-App/internal/usecase"
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// respondError はエラーの種類からステータスとエラーコードを決めて返す
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, gin.H{
		"error":   code,
		"message": err.Error(),
	})
}

func classify(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, usecase.ErrResultNotFound),
		errors.Is(err, usecase.ErrRegionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, usecase.ErrUnknownBaseLayer),
		errors.Is(err, service.ErrUnknownFilterGroup),
		errors.Is(err, service.ErrUnknownFilterKey),
		errors.Is(err, service.ErrEmptyFilterKey),
		errors.Is(err, usecase.ErrInvalidStart),
		errors.Is(err, helper.ErrInvalidLatLng):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, usecase.ErrNotReady),
		errors.Is(err, usecase.ErrNoRouteTarget):
		return http.StatusConflict, "conflict"
	case errors.Is(err, eventloop.ErrClosed):
		return http.StatusGone, "session_closed"
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
