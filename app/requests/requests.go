// Package requests holds the request-schema validation helpers shared
// by the API and web handlers: translating binding failures into the
// field→message map returned on 422 responses.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationMessage is the envelope message on every 422 response.
const ValidationMessage = "The given data was invalid."

// FieldMessages flattens a binding error into a map of request field
// names to human-readable messages.
func FieldMessages(err error) map[string][]string {
	out := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := jsonFieldName(fe.StructField())
			out[field] = append(out[field], messageFor(field, fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out[field] = append(out[field], fmt.Sprintf("The %s field must be a valid %s.", field, typeErr.Type.Kind()))
		return out
	}

	out["body"] = append(out["body"], "The request body is invalid.")
	return out
}

// The default validator reports struct field names; requests use the
// JSON field names.
var fieldNames = map[string]string{
	"Name":        "name",
	"CategoryID":  "category_id",
	"Description": "description",
	"Price":       "price",
	"Stock":       "stock",
	"Enabled":     "enabled",
	"IDs":         "ids",
	"Email":       "email",
	"Password":    "password",
	"Remember":    "remember",
}

func jsonFieldName(structField string) string {
	if name, ok := fieldNames[structField]; ok {
		return name
	}
	return strings.ToLower(structField)
}

func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("The %s field must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
