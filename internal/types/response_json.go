package types

import (
	"encoding/base64"
	"encoding/json"
)

// responseWire is the over-the-wire shape of ResponseTemplate. The spec
// allows "body?: base64-or-utf8-string" without a discriminator field; an
// explicit optional "body_encoding" is added here (default "utf8") so the
// admin API never has to guess, the same way the admin import/export
// endpoints negotiate JSON vs YAML by an explicit signal rather than
// sniffing content.
type responseWire struct {
	Status       uint16      `json:"status,omitempty"`
	Headers      [][2]string `json:"headers,omitempty"`
	Body         string      `json:"body,omitempty"`
	BodyEncoding string      `json:"body_encoding,omitempty"`
	DelayMs      uint64      `json:"delay,omitempty"`
}

func (t *ResponseTemplate) MarshalJSON() ([]byte, error) {
	w := responseWire{
		Status:  t.Status,
		Headers: t.Headers,
		DelayMs: t.DelayMs,
	}
	if t.Body != nil {
		if t.Body.IsBase64 {
			w.Body = base64.StdEncoding.EncodeToString(t.Body.Bytes)
			w.BodyEncoding = "base64"
		} else {
			w.Body = string(t.Body.Bytes)
		}
	}
	return json.Marshal(w)
}

func (t *ResponseTemplate) UnmarshalJSON(data []byte) error {
	var w responseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Status = w.Status
	t.Headers = w.Headers
	t.DelayMs = w.DelayMs
	if w.Body == "" && w.BodyEncoding == "" {
		t.Body = nil
		return nil
	}
	if w.BodyEncoding == "base64" {
		raw, err := base64.StdEncoding.DecodeString(w.Body)
		if err != nil {
			return err
		}
		t.Body = &ResponseBody{Bytes: raw, IsBase64: true}
		return nil
	}
	t.Body = &ResponseBody{Bytes: []byte(w.Body)}
	return nil
}
