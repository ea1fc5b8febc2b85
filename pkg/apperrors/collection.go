package apperrors

import (
	"errors"

	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
)

// FromCollection converts an error returned by the collection service into the
// response the caller sees. Storage details stay in Err and are only logged.
func FromCollection(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	var fieldErrs validation.Errors
	switch {
	case errors.Is(err, collection.ErrValidationFailed), errors.As(err, &fieldErrs):
		appErr := NewBadRequest(ErrCodeValidationFailed, "Invalid input data")
		if errors.As(err, &fieldErrs) {
			details := make([]FieldDetail, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				details = append(details, FieldDetail{Field: fe.Field, Message: fe.Message})
			}
			appErr.WithFields(details)
		}
		return appErr
	case errors.Is(err, collection.ErrNotFound):
		return NewNotFound(ErrCodeContentNotFound, "Content not found")
	case errors.Is(err, collection.ErrTransactionFailed):
		return NewInternal(ErrCodeTransactionFailed, "Internal server error", err)
	case errors.Is(err, collection.ErrStorageUnavailable):
		return NewInternal(ErrCodeStorageUnavailable, "Internal server error", err)
	default:
		return NewInternal(ErrCodeUnexpectedError, "Internal server error", err)
	}
}
