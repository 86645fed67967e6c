package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/scribe/internal/document"
)

// Format selects the byte encoding of a record.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a config value to a Format. The empty string selects
// JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("codec: unknown format %q", s)
}

// Encode serialises rec.
func Encode(rec RawRecord, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return json.Marshal(rec)
	case FormatYAML:
		return yaml.Marshal(rec)
	}
	return nil, fmt.Errorf("codec: unknown format %q", f)
}

// Decode parses data into a record. Malformed input yields a
// *DeserializationError.
func Decode(data []byte, f Format) (RawRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RawRecord{}, &DeserializationError{Err: errors.New("empty input")}
	}
	var rec RawRecord
	switch f {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &rec); err != nil {
			return RawRecord{}, &DeserializationError{Err: err}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return RawRecord{}, &DeserializationError{Err: err}
		}
	default:
		return RawRecord{}, fmt.Errorf("codec: unknown format %q", f)
	}
	return rec, nil
}

// Marshal is ToRecord followed by Encode.
func Marshal(doc document.Document, f Format) ([]byte, error) {
	return Encode(ToRecord(doc), f)
}

// Unmarshal is Decode followed by FromRecord.
func Unmarshal(data []byte, f Format) (document.Document, error) {
	rec, err := Decode(data, f)
	if err != nil {
		return document.Document{}, err
	}
	return FromRecord(rec)
}
