package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondStatus(c, http.StatusOK, data, message)
}

func RespondStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// RespondErrorData is RespondError with a payload, for failures the caller must inspect.
func RespondErrorData(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

var errorStatus = []struct {
	err  error
	code int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAccessDenied, http.StatusForbidden},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrEmailAlreadyExists, http.StatusConflict},
	{ErrSlugTaken, http.StatusConflict},
	{ErrAlreadyMember, http.StatusConflict},
	{ErrPlanLimitReached, http.StatusPaymentRequired},
	{ErrFeatureNotInPlan, http.StatusPaymentRequired},
	{ErrInvalidWebhook, http.StatusBadRequest},
	{ErrInvalidPage, http.StatusBadRequest},
	{ErrInvalidPageSize, http.StatusBadRequest},
	{ErrUpstreamUnverified, http.StatusBadGateway},
}

// HandleServiceError maps a service error onto the response envelope.
func HandleServiceError(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondErrorData(c, http.StatusBadRequest, gin.H{"field": verr.Field}, verr.Error())
		return
	}

	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		if e.code >= http.StatusInternalServerError {
			zap.L().Warn("upstream failure", zap.String("trace_id", traceID(c)), zap.Error(err))
		}
		RespondError(c, e.code, publicMessage(err, e.err))
		return
	}

	if errors.Is(err, ErrDatabaseError) {
		zap.L().Error("database error", zap.String("trace_id", traceID(c)), zap.Error(err))
	} else {
		zap.L().Error("unhandled service error", zap.String("trace_id", traceID(c)), zap.Error(err))
	}
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}

// publicMessage picks the most specific sentinel text so internal causes never leak.
func publicMessage(err, family error) string {
	if family == ErrNotFound {
		for _, specific := range []error{
			ErrAccountNotFound, ErrWorkspaceNotFound, ErrCategoryNotFound, ErrWalkthroughNotFound,
			ErrStepNotFound, ErrVersionNotFound, ErrSubscriptionNotFound, ErrNoRecoverableSnapshot,
		} {
			if errors.Is(err, specific) {
				return specific.Error()
			}
		}
	}
	return family.Error()
}
