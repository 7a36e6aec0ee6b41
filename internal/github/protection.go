package github

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

// ProtectionSettings is a branch protection document kept as an ordered
// set of raw JSON members. Fields are forwarded to GitHub verbatim, so
// settings this service has never heard of pass straight through.
type ProtectionSettings struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseProtectionSettings decodes a protection template. Comments and
// trailing commas are allowed; the document must be a JSON object.
func ParseProtectionSettings(text string) (*ProtectionSettings, error) {
	var settings ProtectionSettings
	if err := json.Unmarshal(jsonc.ToJSON([]byte(text)), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse protection settings: %w", err)
	}
	return &settings, nil
}

// Keys returns member names in document order.
func (p *ProtectionSettings) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Get returns the raw JSON of a member.
func (p *ProtectionSettings) Get(key string) (json.RawMessage, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *ProtectionSettings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("protection settings must be a JSON object")
	}

	p.keys = nil
	p.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
		if _, seen := p.values[key]; !seen {
			p.keys = append(p.keys, key)
		}
		p.values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after protection settings object")
	}
	return nil
}

func (p ProtectionSettings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(p.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
