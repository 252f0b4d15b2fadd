package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"pokeusers/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NameOrID accepts either a JSON string or a JSON number.
type NameOrID string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NameOrID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NameOrID(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("pokemon identifier must be a name or a numeric id")
	}
	if _, err := strconv.ParseInt(num.String(), 10, 64); err != nil {
		return fmt.Errorf("pokemon identifier must be a name or a numeric id")
	}
	*n = NameOrID(num.String())
	return nil
}

// constraintOverrides replaces the generated message for a field/tag pair.
var constraintOverrides = map[string]string{
	"pokemonIds.max": "Pokemon team cannot have more than 6 pokemon",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func constraintMessage(e validator.FieldError) string {
	if msg, ok := constraintOverrides[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", e.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", e.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain no more than %s elements", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// validateStruct runs the validator and groups failures per property.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var fields []services.FieldError
	index := make(map[string]int)
	for _, e := range validationErrors {
		property := e.Field()
		i, seen := index[property]
		if !seen {
			i = len(fields)
			index[property] = i
			fields = append(fields, services.FieldError{Property: property, Value: e.Value()})
		}
		fields[i].Constraints = append(fields[i].Constraints, constraintMessage(e))
	}
	return &services.ValidationError{Fields: fields}
}

// parseBody decodes and validates the request body into dst.
func parseBody(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &services.ValidationError{Fields: []services.FieldError{{
			Property:    "body",
			Constraints: []string{"request body must be valid JSON: " + err.Error()},
		}}}
	}
	return validateStruct(v, dst)
}

// pathParam returns the percent-decoded value of a route parameter.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
