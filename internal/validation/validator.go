// Package validation holds the format checks and the short-circuiting
// rule chain that every mutation passes before touching a store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fritterapp/fritter-server/internal/domain"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
)

// Format messages reported by the field checks.
const (
	msgInvalidTag      = "Tag cannot be empty or more than 20 characters."
	msgInvalidPersona  = "Persona name cannot be empty or more than 30 characters."
	msgInvalidContent  = "Freet content cannot be empty or more than 140 characters."
	msgInvalidUsername = "Username must be 1 to 30 characters and contain no spaces or separators."
)

var (
	tagRule      = fmt.Sprintf("min=%d,max=%d", domain.TagNameMinLength, domain.TagNameMaxLength)
	personaRule  = fmt.Sprintf("min=%d,max=%d", domain.PersonaNameMinLength, domain.PersonaNameMaxLength)
	contentRule  = fmt.Sprintf("min=1,max=%d", domain.FreetContentMaxLength)
	usernameRule = fmt.Sprintf("min=%d,max=%d,excludesall= :/", domain.UsernameMinLength, domain.UsernameMaxLength)
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty, -
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Tag checks a tag name. Lengths count characters, not bytes.
func (v *Validator) Tag(name string) error {
	return v.field(name, tagRule, msgInvalidTag)
}

// PersonaName checks a persona name.
func (v *Validator) PersonaName(name string) error {
	return v.field(name, personaRule, msgInvalidPersona)
}

// FreetContent checks a freet body. Whitespace-only content is rejected.
func (v *Validator) FreetContent(content string) error {
	return v.field(strings.TrimSpace(content), contentRule, msgInvalidContent)
}

// Username checks a username. Spaces, colons and slashes are not allowed.
func (v *Validator) Username(username string) error {
	return v.field(username, usernameRule, msgInvalidUsername)
}

func (v *Validator) field(value, rule, msg string) error {
	if err := v.v.Var(value, rule); err != nil {
		return domainerrors.Validation(msg)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Collect all field errors
	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+fieldErrors[field])
	}

	// The flat message carries every field; details keep the per-field map.
	return domainerrors.ValidationWithDetails(strings.Join(parts, "; "), fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "excludesall":
		return "must not contain any of " + strconv.Quote(e.Param())
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
