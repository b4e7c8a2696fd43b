// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/goccy/go-json"
)

// DefaultMaxBytes caps a JSON body when the caller passes no limit
const DefaultMaxBytes = 1 << 20

type validation struct {
	v     *validator.Validate
	trans ut.Translator
}

var get = sync.OnceValue(func() *validation {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	translate(v, trans, "notblank", "{0} must not be blank")
	translate(v, trans, "min", "{0} must be at least {1}")
	translate(v, trans, "max", "{0} must be at most {1}")

	return &validation{v: v, trans: trans}
})

func translate(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// ParseJSON decodes one JSON object into T and validates it.
// Bodies over maxBytes (DefaultMaxBytes when <= 0) fail as too_large; unknown
// fields, trailing data and empty bodies fail as json.
func ParseJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, error) {
	var dst T
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	_ = r.Body.Close()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return dst, perr.TooLargef("body over %d bytes", maxBytes)
		}
		return dst, perr.Wrap(err, perr.ErrorCodeJSON, "read body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return dst, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}

	if err := Validate(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Validate runs the struct tags of v; the first failure comes back as a
// validation error naming its json field
func Validate(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		logger.Named("bind").Error().Err(err).Msg("validator misuse")
		return perr.Wrap(err, perr.ErrorCodeUnknown, "validation setup")
	}
	fe := verrs[0]
	return perr.WithField(perr.Validationf("%s", fe.Translate(get().trans)), fe.Field())
}
