package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"admissions/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// statusOf maps an error kind to its HTTP status.
func statusOf(kind core.Kind) int {
	switch kind {
	case core.KindInvalidInput, core.KindSignatureMismatch:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindDuplicate:
		return http.StatusConflict
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := statusOf(kind)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, status, map[string]any{"success": false, "message": core.MessageOf(err)})
}

// decode reads a JSON body into dst and runs struct validation.
func decode(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Invalid(op, "request body is required")
		}
		return core.Invalid(op, "invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(op, err)
	}
	return nil
}

func validationError(op string, err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return core.Internal(op, err)
	}
	f := fields[0]
	switch f.Tag() {
	case "required":
		return core.Invalid(op, fmt.Sprintf("%s is required", f.Field()))
	case "email":
		return core.Invalid(op, fmt.Sprintf("%s must be a valid email", f.Field()))
	case "min":
		return core.Invalid(op, fmt.Sprintf("%s must be at least %s characters", f.Field(), f.Param()))
	case "oneof":
		return core.Invalid(op, fmt.Sprintf("%s must be one of: %s", f.Field(), f.Param()))
	default:
		return core.Invalid(op, fmt.Sprintf("%s is invalid", f.Field()))
	}
}
