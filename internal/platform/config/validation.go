package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key, the same name used in the
// YAML profiles and (upper-cased) in environment variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("koanf"); name != "" && name != "-" {
			return name
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// Validate checks struct constraints first, then the rules that only apply
// outside local development. The service refuses to start on any failure.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
		return validationFailed(problems)
	}

	if problems := c.deploymentProblems(); len(problems) > 0 {
		return validationFailed(problems)
	}
	return nil
}

// IsDevelopment reports whether the service runs on a developer machine or in tests.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "local" || a.Environment == "test"
}

func (c *Config) deploymentProblems() []string {
	if c.App.IsDevelopment() {
		return nil
	}

	var problems []string
	if c.Auth.Secret == DevelopmentJWTSecret {
		problems = append(problems, fmt.Sprintf("auth.secret must be set in the %s environment", c.App.Environment))
	}
	if c.Storage.Key == "" {
		problems = append(problems, fmt.Sprintf("storage.key must be set in the %s environment", c.App.Environment))
	}
	if c.App.Environment == "prod" && c.Database.Driver == "sqlite" {
		problems = append(problems, "database.driver sqlite is not supported in prod")
	}
	return problems
}

func validationFailed(problems []string) error {
	return errors.New("config validation failed:\n  " + strings.Join(problems, "\n  "))
}

// describe renders one field error as "<key path> <problem>".
func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return key + " is required when " + fe.Param()
	case "min":
		return key + " must be at least " + fe.Param()
	case "max":
		return key + " must be at most " + fe.Param()
	case "oneof":
		return key + " must be one of: " + fe.Param()
	case "url":
		return key + " must be a valid URL"
	case "email":
		return key + " must be a valid email address"
	default:
		return key + " failed validation: " + fe.Tag()
	}
}

// keyPath drops the root struct name: "Config.server.read_timeout" becomes
// "server.read_timeout".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
