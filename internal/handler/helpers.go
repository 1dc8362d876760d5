package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/daffodils/florist-api/internal/dto"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondBindError turns a gin binding failure into the field-level error
// list; malformed JSON and non-validator errors collapse into one message.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed.",
			"errors":  fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "Invalid request body.")
}

// respondFieldError reports a single field-level failure in the same shape
// as a binding error.
func respondFieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Validation failed.",
		"errors":  []dto.FieldError{{Field: field, Message: message}},
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id.")
		return uuid.Nil, false
	}
	return id, true
}

// fieldPath rewrites "CreateOrderRequest.CustomerInfo.Email" to
// "customerInfo.email", matching the request JSON shape.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		// Strip the slice index from fields like "Items[0]".
		if idx := strings.IndexByte(part, '['); idx >= 0 {
			part = part[:idx] + part[strings.IndexByte(part, ']')+1:]
		}
		runes := []rune(part)
		runes[0] = unicode.ToLower(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "min":
		return "Value is below the minimum of " + fe.Param() + "."
	case "max":
		return "Value exceeds the maximum of " + fe.Param() + "."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}
