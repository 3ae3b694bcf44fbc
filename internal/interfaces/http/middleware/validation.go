package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pentol/backend/internal/interfaces/http/dto"
)

// SetupValidator reports fields by their json name, or form name for query
// structs.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			switch name {
			case "-":
				return ""
			case "":
				continue
			}
			return name
		}
		return ""
	})
}

var fixedMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Invalid UUID format",
}

var comparisons = map[string]string{
	"gt":  "greater than ",
	"gte": "greater than or equal to ",
	"lt":  "less than ",
	"lte": "less than or equal to ",
}

func fieldMessage(e validator.FieldError) string {
	if msg, ok := fixedMessages[e.Tag()]; ok {
		return msg
	}
	if cmp, ok := comparisons[e.Tag()]; ok {
		return "Must be " + cmp + e.Param()
	}

	switch e.Tag() {
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min", "max":
		bound := "at least "
		if e.Tag() == "max" {
			bound = "at most "
		}
		switch e.Kind() {
		case reflect.String:
			return "Must be " + bound + e.Param() + " characters"
		case reflect.Slice, reflect.Array, reflect.Map:
			return "Must contain " + bound + e.Param() + " items"
		}
		return "Must be " + bound + e.Param()
	}
	return "Invalid value"
}

// FormatValidationErrors turns a ShouldBind error into the error envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var (
		fieldErrs validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		details := make([]dto.ValidationDetail, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)}
		}
		return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
	case errors.As(err, &syntaxErr):
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Request body is not valid JSON", requestID)
	case errors.As(err, &typeErr):
		return dto.NewValidationErrorResponse("Request validation failed", requestID, []dto.ValidationDetail{{
			Field:   typeErr.Field,
			Message: "Must be of type " + typeErr.Type.String(),
		}})
	}
	return dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, err.Error(), requestID)
}

// HandleValidationError aborts with 400 and the formatted envelope
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}
