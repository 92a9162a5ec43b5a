package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"meeting-summarizer/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest validates both struct tags and domain rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return validationError(err)
	}
	return domainValidate(req)
}

// ValidateQuery validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errors.NewBadRequestError("Invalid query parameters")
	}
	return domainValidate(req)
}

// ValidateForm validates multipart form fields
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return validationError(err)
	}
	return domainValidate(req)
}

func validationError(err error) error {
	validationErrors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())

			switch fieldError.Tag() {
			case "required":
				validationErrors[field] = "is required"
			case "min":
				validationErrors[field] = "is too short"
			case "max":
				validationErrors[field] = "is too long"
			case "oneof":
				validationErrors[field] = "must be one of the allowed values"
			default:
				validationErrors[field] = "is invalid"
			}
		}
	} else {
		validationErrors["request"] = "malformed request body"
	}

	return errors.NewValidationError("Validation failed", validationErrors)
}

func domainValidate(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
