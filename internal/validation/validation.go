// Package validation checks inbound request bodies before anything leaves the process.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joost-contentoo/korsit-portal/internal/models"
)

// Error lists every invalid field of a request, keyed by its JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
	return v
}

// Localization decodes and checks a localize request body. Absent optional
// fields come back as empty strings. The content itself is not trimmed.
func Localization(body []byte) (models.LocalizationRequest, error) {
	var req models.LocalizationRequest

	fields, err := decodeObject(body)
	if err != nil {
		return req, err
	}

	verr := &Error{}
	targets := []struct {
		name string
		dst  *string
	}{
		{name: "blog_content", dst: &req.BlogContent},
		{name: "seo_context", dst: &req.SEOContext},
		{name: "additional_instructions", dst: &req.AdditionalInstructions},
		{name: "style_guide", dst: &req.StyleGuide},
		{name: "glossary", dst: &req.Glossary},
	}
	for _, tgt := range targets {
		if err := stringField(fields, tgt.name, tgt.dst); err != nil {
			verr.add(tgt.name, err.Error())
		}
	}

	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return req, fmt.Errorf("validate localization request: %w", err)
		}
		for _, fe := range ves {
			verr.add(fe.Field(), describe(fe))
		}
	}

	return req, verr.orNil()
}

// DocumentContent extracts the content field of a reference document update.
func DocumentContent(body []byte) (string, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return "", err
	}

	raw, ok := fields["content"]
	if !ok || isNull(raw) {
		return "", &Error{Fields: map[string]string{"content": "must be a string"}}
	}

	var content string
	if err := stringField(fields, "content", &content); err != nil {
		return "", &Error{Fields: map[string]string{"content": err.Error()}}
	}
	return content, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &Error{Fields: map[string]string{"body": "must be a JSON object"}}
	}
	return fields, nil
}

// stringField copies fields[name] into dst. Missing and null values leave dst empty.
func stringField(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("must be a string")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
