package domain

import "encoding/json"

// FieldSpec describes one piece of information that must be supplied before a
// draft can be generated for an accepted suggestion. Hint is nil when the
// provider gave none.
type FieldSpec struct {
	Name     string  `json:"name"`
	Hint     *string `json:"hint"`
	Required bool    `json:"required"`
}

// FieldPayload groups required fields by audience. Customer fields are
// collected from the end user before accept; responder fields are internal
// notes the agent fills in.
type FieldPayload struct {
	Customer  []FieldSpec `json:"customer,omitempty"`
	Responder []FieldSpec `json:"responder,omitempty"`
}

// Empty reports whether the payload carries no fields at all.
func (p FieldPayload) Empty() bool {
	return len(p.Customer) == 0 && len(p.Responder) == 0
}

// MissingCustomer returns the names of required customer fields absent from
// provided (or present with a blank value).
func (p FieldPayload) MissingCustomer(provided map[string]string) []string {
	var missing []string
	for _, f := range p.Customer {
		if !f.Required {
			continue
		}
		if v, ok := provided[f.Name]; !ok || v == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// EncodeFieldPayload serializes a payload to the JSON text blob stored on a
// Suggestion. An empty payload encodes to "".
func EncodeFieldPayload(p FieldPayload) string {
	if p.Empty() {
		return ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeFieldPayload parses the JSON text blob stored on a Suggestion back
// into a FieldPayload. It also accepts the legacy shape where the blob is a
// flat JSON array of field-name strings, mapping each to a required customer
// field with no hint. Blank or unparseable input yields an empty payload.
func DecodeFieldPayload(raw string) FieldPayload {
	if raw == "" {
		return FieldPayload{}
	}
	var p FieldPayload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return p
	}
	var legacy []string
	if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
		return FieldPayload{Customer: FieldsFromNames(legacy)}
	}
	return FieldPayload{}
}

// FieldsFromNames maps plain field names to required FieldSpecs with no hint.
// Used to normalize the legacy flat required_fields shape.
func FieldsFromNames(names []string) []FieldSpec {
	if len(names) == 0 {
		return nil
	}
	out := make([]FieldSpec, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out, FieldSpec{Name: n, Required: true})
	}
	return out
}
