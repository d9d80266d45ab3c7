// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"ledger/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var nameRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._'-]*$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the ledger tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("ledger_name", validateLedgerName)
}

// validateISODate accepts a calendar date in YYYY-MM-DD form. Empty strings
// pass so the tag can be combined with omitempty or required.
func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := models.ParseDate(s)
	return err == nil
}

func validateLedgerName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && nameRegex.MatchString(s)
}
