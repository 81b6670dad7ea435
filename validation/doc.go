// Package validation checks harness inputs before anything is launched.
//
// Struct tag validation (go-playground/validator) is used for process
// commands; the programmatic Validator collects field errors for config
// sections. Both report failures as errors.AppError with code INVALID_INPUT.
//
//	type Command struct {
//	    Binary string   `validate:"required"`
//	    Env    []string `validate:"dive,envpair"`
//	}
//	err := validation.Validate(cmd)
//
//	v := validation.New()
//	v.Required("name", cfg.Name).Min("max_line_bytes", cfg.MaxLineBytes, 1)
//	err := v.Error()
package validation
