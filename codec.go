package dirtab

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Codec converts between file bytes and entry values.
//
// The table treats the codec as a black box: it never inspects the raw
// bytes itself. Encode must be deterministic within one process run;
// Decode may fail on content a human mangled, and the table reports
// that as [ErrDecode] tied to the offending key.
type Codec[V any] interface {
	// Encode renders a value as the entry file's full byte content.
	Encode(value V) ([]byte, error)

	// Decode parses an entry file's bytes back into a value.
	Decode(data []byte) (V, error)
}

// Raw is the identity codec: the file's bytes are the value.
// Use it when the caller wants raw content without structured parsing.
type Raw struct{}

func (Raw) Encode(value []byte) ([]byte, error) { return value, nil }

func (Raw) Decode(data []byte) ([]byte, error) { return data, nil }

// JSON stores values as indented JSON with a trailing newline, so files
// diff cleanly under git and end the way text editors expect.
//
// Decoding standardizes JSONC first: comments and trailing commas left
// behind by a human editing the file are accepted.
type JSON[V any] struct{}

func (JSON[V]) Encode(value V) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return append(data, '\n'), nil
}

func (JSON[V]) Decode(data []byte) (V, error) {
	var value V

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return value, fmt.Errorf("invalid JSONC: %w", err)
	}

	unmarshalErr := json.Unmarshal(standardized, &value)
	if unmarshalErr != nil {
		return value, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return value, nil
}

// YAML stores values as YAML documents.
type YAML[V any] struct{}

func (YAML[V]) Encode(value V) ([]byte, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return data, nil
}

func (YAML[V]) Decode(data []byte) (V, error) {
	var value V

	err := yaml.Unmarshal(data, &value)
	if err != nil {
		return value, fmt.Errorf("invalid YAML: %w", err)
	}

	return value, nil
}

// Compile-time interface checks.
var (
	_ Codec[[]byte] = Raw{}
	_ Codec[int]    = JSON[int]{}
	_ Codec[int]    = YAML[int]{}
)
