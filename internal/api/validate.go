package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

const (
	notBlankTag = "notblank"
	monthTag    = "month"
)

// requestValidator checks decoded request bodies and renders field errors in
// English, keyed by JSON field name.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	mustRegister("default translations", en_translations.RegisterDefaultTranslations(v, translator))

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(notBlankTag, v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	mustRegister(monthTag, v.RegisterValidation(monthTag, func(fl validator.FieldLevel) bool {
		return schedule.IsMonth(fl.Field().String())
	}))

	noop := func(ut.Translator) error { return nil }
	mustRegister(notBlankTag+" translation", v.RegisterTranslation(notBlankTag, translator, noop, func(_ ut.Translator, fe validator.FieldError) string {
		return fe.Field() + " cannot be blank"
	}))
	mustRegister(monthTag+" translation", v.RegisterTranslation(monthTag, translator, noop, func(_ ut.Translator, fe validator.FieldError) string {
		return fe.Field() + " must be an English month name"
	}))

	return &requestValidator{validate: v, translator: translator}
}

func mustRegister(what string, err error) {
	if err != nil {
		panic(fmt.Sprintf("registering %s: %v", what, err))
	}
}

// check validates a struct and returns the failures keyed by field namespace,
// or nil when the struct is valid.
func (rv *requestValidator) check(v any) map[string]string {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Translate(rv.translator)
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
