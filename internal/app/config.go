package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
// The flag tags name the command-line flag each field comes from and are
// used in validation messages.
type Config struct {
	WorkflowPath string `flag:"workflow" validate:"required"`

	LogFormat string `flag:"log-format" validate:"oneof=text json"`
	LogLevel  string `flag:"log-level" validate:"oneof=debug info warn error"`

	Workers           int           `flag:"workers" validate:"min=1"`
	Timeout           time.Duration `flag:"timeout" validate:"gte=0"`
	ContinueOnFailure bool          `flag:"continue-on-failure"`

	// Sets are raw `label.input=value` overrides applied before the run.
	Sets []string `flag:"set" validate:"dive,required,contains=="`

	PublishURL   string `flag:"publish-url" validate:"omitempty,url"`
	PublishEvent string `flag:"publish-event"`

	SnapshotOut      string `flag:"snapshot-out"`
	SnapshotCompress bool   `flag:"snapshot-compress"`

	HealthcheckPort int `flag:"healthcheck-port" validate:"min=0,max=65535"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return "-" + name
		}
		return fld.Name
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), describe(fe)))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "contains":
		return fmt.Sprintf("%q must have the form label.input=value", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
