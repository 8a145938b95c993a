package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	FieldID         = "id"
	FieldLegacyID   = "_id"
	FieldUID        = "uid"
	FieldChecksum   = "checksum"
	FieldLocations  = "locations"
	FieldModifyDate = "meta_modify_date"

	ModifyDateLayout = "2006-01-02 15:04:05.000000"
)

// Metadata is a file record as exchanged with clients: a handful of well
// known fields plus arbitrary opaque ones.
type Metadata map[string]any

func (m Metadata) ID() string {
	id, _ := m[FieldID].(string)
	return id
}

func (m Metadata) UID() string {
	uid, _ := m[FieldUID].(string)
	return uid
}

func (m Metadata) Checksum() string {
	checksum, _ := m[FieldChecksum].(string)
	return checksum
}

// Locations returns the string entries of the locations field.
func (m Metadata) Locations() []string {
	switch v := m[FieldLocations].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Touch stamps the modification date.
func (m Metadata) Touch(now time.Time) {
	m[FieldModifyDate] = now.UTC().Format(ModifyDateLayout)
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return cloneValue(map[string]any(m)).(map[string]any)
}

// Without returns a deep copy of m without the given keys.
func (m Metadata) Without(keys ...string) Metadata {
	out := m.Clone()
	if out == nil {
		out = Metadata{}
	}
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// Merge copies every field of patch into m, replacing existing values.
func (m Metadata) Merge(patch Metadata) {
	for key, value := range patch {
		m[key] = cloneValue(value)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return Metadata(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Canonical serializes v as JSON with object keys sorted at every depth.
// The output is stable for equal inputs and is what version tags hash.
func Canonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes a single JSON value into v. Numbers are kept as
// json.Number so integers beyond float64 precision survive unchanged.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// Decode parses a JSON object into Metadata.
func Decode(data []byte) (Metadata, error) {
	var md Metadata
	if err := Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if md == nil {
		return nil, fmt.Errorf("failed to decode metadata: not a JSON object")
	}
	return md, nil
}

// Normalize converts m into its JSON decoded form, so values compare the
// same regardless of whether they came from Go code or from the wire.
func Normalize(m Metadata) (Metadata, error) {
	data, err := Canonical(m)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// NormalizeValue applies the same conversion to a single value.
func NormalizeValue(v any) (any, error) {
	data, err := Canonical(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
