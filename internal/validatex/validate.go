// Package validatex wraps go-playground/validator with the custom tags used
// by configuration and schedule structs, and English error messages keyed
// by JSON field names.
package validatex

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	hhmmTag     = "hhmm"
	notBlankTag = "notblank"
)

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Validator pairs a validator instance with its translator.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation(hhmmTag, hhmmValidation)
	_ = v.RegisterValidation(notBlankTag, notBlankValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{hhmmTag, notBlankTag} {
		_ = v.RegisterTranslation(tag, trans, registerFn, translateCustom)
	}

	return &Validator{validate: v, translator: trans}
}

// Struct validates s and flattens failures into a single error whose
// message lists every field problem.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(v.translator))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidHHMM reports whether s is a 24h "HH:MM" time.
func ValidHHMM(s string) bool {
	return hhmmRe.MatchString(s)
}

func hhmmValidation(fl validator.FieldLevel) bool {
	return ValidHHMM(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case hhmmTag:
		return fe.Field() + " must be a 24h time in HH:MM form"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return fe.Error()
	}
}
