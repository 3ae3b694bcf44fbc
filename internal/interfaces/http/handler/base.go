package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/interfaces/http/dto"
	"github.com/pentol/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getActor returns the resolved profile or writes a 401 and reports false
func (h *BaseHandler) getActor(c *gin.Context) (*identity.Profile, bool) {
	actor := middleware.GetProfile(c)
	if actor == nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return actor, true
}

// pathID parses the named path parameter as a uuid or writes a 400
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError("invalid "+name).WithDetail("field", name))
		return uuid.Nil, false
	}
	return id, true
}

// requireConfirm rejects a state change the caller did not confirm
func (h *BaseHandler) requireConfirm(c *gin.Context, confirm bool) bool {
	if confirm {
		return true
	}
	h.HandleError(c, shared.NewValidationError("confirm must be true to perform this action").
		WithDetail("field", "confirm"))
	return false
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPage sends one page of items with pagination meta
func SuccessPage[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(*page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError renders a request binding failure. Oversized bodies are 413,
// everything else goes through the validation formatter.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if isMaxBytes(err) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body too large")
		return
	}
	middleware.HandleValidationError(c, err)
}

// HandleError renders domain errors with their details. Anything else is
// an internal error whose message is not exposed.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithDetails(
			code,
			domainErr.Message,
			getRequestID(c),
			domainErr.Details,
		))
		return
	}

	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}
