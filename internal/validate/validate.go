// Package validate wraps go-playground/validator so request payloads report
// failures as a map from JSON field name to a readable message.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// PlacaTag validates Brazilian licence plates in the old and Mercosul formats.
	PlacaTag   = "placa"
	placaText  = "must be a valid licence plate (ABC1234 or ABC1D23)"
	placaRegex = regexp.MustCompile(`^([A-Z]{3}[0-9]{4}|[A-Z]{3}[0-9][A-Z][0-9]{2})$`)

	overrides = map[string]string{
		"required": "this field is required",
		"email":    "must be a valid email",
		"numeric":  "must contain only digits",
		"url":      "must be a valid URL",
	}
)

// Errors maps JSON field names to messages.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		validate = validator.New()
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation(PlacaTag, func(fl validator.FieldLevel) bool {
			return placaRegex.MatchString(fl.Field().String())
		})
		registerTranslation(PlacaTag, placaText)
		for tag, text := range overrides {
			registerTranslation(tag, text)
		}
	})
	return validate, translator
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates v and returns Errors when any field fails.
func Struct(v interface{}) error {
	vd, tr := instance()
	err := vd.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(tr)
	}
	return out
}

// ValidPlaca reports whether s is an acceptable licence plate.
func ValidPlaca(s string) bool {
	return placaRegex.MatchString(s)
}
