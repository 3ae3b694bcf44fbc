package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/shared"
)

// optionalUUID parses an optional id query value. Empty means unset.
func optionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewValidationError("invalid " + field).WithDetail("field", field)
	}
	return &id, nil
}

func isMaxBytes(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes)
}
