package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// ErrUnparseable is returned when no extraction strategy recovers a JSON
// object from the provider content.
var ErrUnparseable = errors.New("no parseable intent object in provider response")

// wireField is the provider's field-spec shape. Required defaults to true
// when omitted, matching the legacy contract.
type wireField struct {
	Name     string  `json:"name"`
	Hint     *string `json:"hint"`
	Required *bool   `json:"required"`
}

// wireResult is the superset of response shapes the provider has been seen to
// emit: the structured contract plus the legacy flat required_fields list.
type wireResult struct {
	Intent                  string      `json:"intent"`
	Confidence              float64     `json:"confidence"`
	SuggestedAction         string      `json:"suggested_action"`
	RequiredFieldsCustomer  []wireField `json:"required_fields_customer"`
	RequiredFieldsResponder []wireField `json:"required_fields_responder"`
	RequiredFields          []string    `json:"required_fields"`
	FollowUpQuestion        string      `json:"follow_up_question"`
}

// extractStrategy attempts to recover the raw JSON object text from one
// possible response shape, returning ok=false to let the next strategy run.
type extractStrategy func(content string) (jsonText string, ok bool)

// Strategies in priority order: the content is itself a JSON object; the
// content is a JSON-encoded string wrapping the object; the object is embedded
// among extra prose. First success wins.
var extractStrategies = []extractStrategy{
	func(c string) (string, bool) {
		t := strings.TrimSpace(c)
		if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
			return t, true
		}
		return "", false
	},
	func(c string) (string, bool) {
		var inner string
		if err := json.Unmarshal([]byte(strings.TrimSpace(c)), &inner); err != nil {
			return "", false
		}
		t := strings.TrimSpace(inner)
		if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
			return t, true
		}
		return "", false
	},
	func(c string) (string, bool) {
		t := firstJSONObject(c)
		if t != "" && json.Valid([]byte(t)) {
			return t, true
		}
		return "", false
	},
}

// Normalize turns raw provider content into a canonical IntentResult. It runs
// the extraction strategies in priority order, decodes the first hit, and
// normalizes the legacy flat required_fields list into customer FieldSpecs.
// The original content is retained on the result for audit.
func Normalize(content string) (IntentResult, error) {
	for _, strat := range extractStrategies {
		text, ok := strat(content)
		if !ok {
			continue
		}
		var w wireResult
		if err := json.Unmarshal([]byte(text), &w); err != nil {
			continue
		}
		if w.Intent == "" {
			// A JSON object without an intent key is not a classification.
			continue
		}
		res := IntentResult{
			Intent:                  w.Intent,
			Confidence:              w.Confidence,
			SuggestedAction:         w.SuggestedAction,
			RequiredFieldsCustomer:  fieldSpecs(w.RequiredFieldsCustomer),
			RequiredFieldsResponder: fieldSpecs(w.RequiredFieldsResponder),
			FollowUpQuestion:        w.FollowUpQuestion,
			Raw:                     content,
		}
		if len(res.RequiredFieldsCustomer) == 0 && len(w.RequiredFields) > 0 {
			res.RequiredFieldsCustomer = domain.FieldsFromNames(w.RequiredFields)
		}
		return res, nil
	}
	return UnknownResult(), ErrUnparseable
}

func fieldSpecs(in []wireField) []domain.FieldSpec {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.FieldSpec, 0, len(in))
	for _, f := range in {
		if f.Name == "" {
			continue
		}
		req := true
		if f.Required != nil {
			req = *f.Required
		}
		out = append(out, domain.FieldSpec{Name: f.Name, Hint: f.Hint, Required: req})
	}
	return out
}

// firstJSONObject returns the first balanced {...} substring of s, tracking
// string literals and escapes so braces inside values do not confuse the
// depth count. Returns "" when no balanced object exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
