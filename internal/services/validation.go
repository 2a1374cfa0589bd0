package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Kind    ErrorKind         `json:"kind,omitempty"`    // Toll error kind
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// Validate is ValidateStruct with failures reported as InvalidRequest.
func (vh *ValidationHelper) Validate(s any) error {
	err := vh.validator.Struct(s)
	if err == nil {
		return nil
	}
	details := validationDetails(err)
	if len(details) == 0 {
		return &TollError{Kind: KindInvalidRequest, Reason: "invalid request", Err: err}
	}
	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return &TollError{
		Kind:   KindInvalidRequest,
		Reason: fmt.Sprintf("invalid %s", strings.Join(fields, ", ")),
		Err:    err,
	}
}

func validationDetails(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	details := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
	}
	return details
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message, Kind: KindOf(validationErr)}
	if validationErr != nil {
		errorResp.Details = validationDetails(validationErr)
	}

	json.NewEncoder(w).Encode(errorResp)
}
