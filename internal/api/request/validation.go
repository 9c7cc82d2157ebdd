package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// dcNameRegex matches data center names. The name doubles as the Infrahub
// branch suffix and the device hostname prefix, so underscores are out.
var dcNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,62}$`)

func init() {
	validate.RegisterValidation("dcname", func(fl validator.FieldLevel) bool {
		return dcNameRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}
