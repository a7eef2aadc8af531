package models

import "encoding/json"

// LocalizationRequest is the normalized payload forwarded to the webhook.
// Optional fields are empty strings, never absent.
type LocalizationRequest struct {
	BlogContent            string `json:"blog_content" validate:"notblank"`
	SEOContext             string `json:"seo_context"`
	AdditionalInstructions string `json:"additional_instructions"`
	StyleGuide             string `json:"style_guide"`
	Glossary               string `json:"glossary"`
}

// LocalizationResult is the success body of the localize endpoint.
type LocalizationResult struct {
	LocalizedContent string `json:"localized_content"`

	// Debug carries unrecognized upstream fields that are echoed next to
	// localized_content. Nil unless verbose logging is enabled.
	Debug map[string]json.RawMessage `json:"-"`
}

// MarshalJSON flattens Debug into the top-level object.
func (r LocalizationResult) MarshalJSON() ([]byte, error) {
	if len(r.Debug) == 0 {
		type plain LocalizationResult
		return json.Marshal(plain(r))
	}

	out := make(map[string]json.RawMessage, len(r.Debug)+1)
	for k, v := range r.Debug {
		out[k] = v
	}
	content, err := json.Marshal(r.LocalizedContent)
	if err != nil {
		return nil, err
	}
	// The stringified payload replaces any upstream localized_content, even "" or null.
	out["localized_content"] = content
	return json.Marshal(out)
}

// DocumentKind names a reference document.
type DocumentKind string

const (
	DocumentStyleGuide DocumentKind = "style_guide"
	DocumentGlossary   DocumentKind = "glossary"
)

// ReferenceDocument is the body exchanged by the document endpoints.
type ReferenceDocument struct {
	Content string `json:"content"`
}

// Label is the human readable document name used in messages.
func (k DocumentKind) Label() string {
	switch k {
	case DocumentStyleGuide:
		return "style guide"
	case DocumentGlossary:
		return "glossary"
	default:
		return string(k)
	}
}
