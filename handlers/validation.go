package handlers

import "github.com/go-playground/validator/v10"

// getValidationErrorMessage returns a user-friendly validation error message
func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or too small"
	case "max":
		return "Value is too long or too large"
	case "oneof":
		return "Value must be one of the allowed options"
	default:
		return "Invalid value"
	}
}

// validationErrorMap flattens validator errors into a field->message map.
func validationErrorMap(err error) map[string]string {
	out := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out[fe.Field()] = getValidationErrorMessage(fe)
		}
	} else {
		out["request"] = err.Error()
	}
	return out
}
