package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "planner.max_tokens")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// validate is the shared struct validator. Field names in error reports
// come from mapstructure tags so they match the config file keys.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Tag-level constraints (ranges, enums, required fields) are
// checked by the struct validator; cross-field rules are checked by hand.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			for _, fe := range verrs {
				errors = append(errors, ValidationError{
					Field:   fieldPath(fe),
					Value:   fe.Value(),
					Message: tagMessage(fe),
				})
			}
		} else {
			errors = append(errors, ValidationError{
				Field:   "config",
				Value:   nil,
				Message: err.Error(),
			})
		}
	}

	// Cross-field rules the struct validator cannot express
	errors = append(errors, c.validatePlanner()...)
	errors = append(errors, c.validateExecutor()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

// fieldPath converts a validator namespace like "Config.planner.max_tokens"
// into the config file key "planner.max_tokens".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

// tagMessage renders a human-readable message for a failed validation tag.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be empty"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("cannot exceed %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// validatePlanner checks planner rules that depend on the selected backend
func (c *Config) validatePlanner() []ValidationError {
	var errors []ValidationError

	if c.Planner.Backend == "cli" && strings.TrimSpace(c.Planner.CLICommand) == "" {
		errors = append(errors, ValidationError{
			Field:   "planner.cli_command",
			Value:   c.Planner.CLICommand,
			Message: "cannot be empty when planner.backend is 'cli'",
		})
	}

	// API backends read their key from the named environment variable
	switch c.Planner.Backend {
	case "anthropic", "openai", "gemini":
		if strings.TrimSpace(c.Planner.APIKeyEnv) == "" {
			errors = append(errors, ValidationError{
				Field:   "planner.api_key_env",
				Value:   c.Planner.APIKeyEnv,
				Message: "cannot be empty for API backends",
			})
		}
	}

	// Validate template dir if specified
	if c.Planner.TemplateDir != "" {
		info, err := os.Stat(c.Planner.TemplateDir)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   "planner.template_dir",
				Value:   c.Planner.TemplateDir,
				Message: "directory does not exist",
			})
		} else if !info.IsDir() {
			errors = append(errors, ValidationError{
				Field:   "planner.template_dir",
				Value:   c.Planner.TemplateDir,
				Message: "must be a directory",
			})
		}
	}

	return errors
}

// validateExecutor checks executor rules that depend on the selected backend
func (c *Config) validateExecutor() []ValidationError {
	var errors []ValidationError

	if c.Executor.Backend == "cli" && strings.TrimSpace(c.Executor.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "executor.command",
			Value:   c.Executor.Command,
			Message: "cannot be empty when executor.backend is 'cli'",
		})
	}

	if c.Executor.WorkDir != "" {
		errors = append(errors, validatePathValue(c.Executor.WorkDir, "executor.work_dir")...)
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if c.Paths.StateDir != "" {
		errors = append(errors, validatePathValue(c.Paths.StateDir, "paths.state_dir")...)
	}

	return errors
}

// validatePathValue checks a configured path for values no filesystem accepts
func validatePathValue(path, field string) []ValidationError {
	var errors []ValidationError

	// Check for null bytes which are invalid in paths
	if strings.ContainsRune(path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: "path contains invalid null character",
		})
	}

	// Reasonable path length limit (most filesystems have limits around 4096)
	const maxPathLength = 4096
	if len(path) > maxPathLength {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
		})
	}

	return errors
}
