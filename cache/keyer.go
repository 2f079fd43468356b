package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Keyer derives deterministic cache keys from an operation and its input.
//
// Contract:
//   - Determinism: structurally equal inputs produce the same key, regardless
//     of map iteration order or whether the input is a struct or a map.
//   - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(operation string, input any) (string, error)
}

// DefaultKeyer builds keys of the form "<operation>_<decimal hash>".
type DefaultKeyer struct {
	// Seed is passed to Hash53. Keys shared with other processes use 0.
	Seed uint32
}

// NewDefaultKeyer creates a keyer with seed 0.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
func (k *DefaultKeyer) Key(operation string, input any) (string, error) {
	if operation == "" {
		return "", ErrMissingOperation
	}

	h, err := HashValue(input, k.Seed)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize input: %w", err)
	}

	key := operation + "_" + strconv.FormatUint(h, 10)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// canonicalize produces the canonical JSON of v. The value is encoded,
// decoded into generic form and encoded again, so structs collapse into
// objects and every object has sorted keys. Numbers keep their literal form.
func canonicalize(v any) ([]byte, error) {
	raw, err := encode(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return encode(generic)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
