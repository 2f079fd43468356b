package cache

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"pgregory.net/rapid"
)

var keyPattern = regexp.MustCompile(`^[a-z_]+_[0-9]+$`)

func TestKeyer_DeterministicForMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	map1 := map[string]any{"b": 2, "a": 1, "c": 3}
	map2 := map[string]any{"a": 1, "c": 3, "b": 2}

	key1, err := keyer.Key("job_search", map1)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	key2, err := keyer.Key("job_search", map2)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	if key1 != key2 {
		t.Errorf("keys should be equal for same content:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_DeterministicProperty(t *testing.T) {
	keyer := NewDefaultKeyer()

	rapid.Check(t, func(t *rapid.T) {
		m := rapid.MapOf(rapid.StringMatching(`[a-z]{1,8}`), rapid.IntRange(-1000, 1000)).Draw(t, "input")

		// The JSON round trip rebuilds the map with a fresh insertion order.
		raw, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		var rebuilt map[string]any
		if err := json.Unmarshal(raw, &rebuilt); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}

		k1, err := keyer.Key("generate", m)
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		k2, err := keyer.Key("generate", rebuilt)
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		if k1 != k2 {
			t.Fatalf("keys differ for equal input: %s != %s", k1, k2)
		}
	})
}

func TestKeyer_ArrayOrderPreserved(t *testing.T) {
	keyer := NewDefaultKeyer()

	key1, err := keyer.Key("generate", map[string]any{"items": []any{1, 2, 3}})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	key2, err := keyer.Key("generate", map[string]any{"items": []any{3, 2, 1}})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	if key1 == key2 {
		t.Errorf("keys should differ for different array order: %s", key1)
	}
}

func TestKeyer_DifferentOperationsDifferentKeys(t *testing.T) {
	keyer := NewDefaultKeyer()
	input := map[string]any{"q": "go developer"}

	key1, _ := keyer.Key("job_search", input)
	key2, _ := keyer.Key("interview_prep", input)

	if key1 == key2 {
		t.Errorf("different operations should produce different keys: %s", key1)
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	keyer := NewDefaultKeyer()

	tests := []struct {
		name  string
		input any
	}{
		{"map", map[string]any{"a": 1}},
		{"string", "rewrite my summary"},
		{"nil", nil},
		{"empty map", map[string]any{}},
		{"tuple", []any{"engineer", "berlin", 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := keyer.Key("resume_rewrite", tt.input)
			if err != nil {
				t.Fatalf("Key() error = %v", err)
			}
			if !keyPattern.MatchString(key) {
				t.Errorf("key %q does not match <operation>_<digits>", key)
			}
		})
	}
}

func TestKeyer_NestedMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	input1 := map[string]any{"outer": map[string]any{"z": 1, "a": map[string]any{"y": true, "b": nil}}}
	input2 := map[string]any{"outer": map[string]any{"a": map[string]any{"b": nil, "y": true}, "z": 1}}

	key1, _ := keyer.Key("generate", input1)
	key2, _ := keyer.Key("generate", input2)
	if key1 != key2 {
		t.Errorf("nested maps with same content should produce same key: %s != %s", key1, key2)
	}
}

func TestKeyer_NumbersKeepLiteralForm(t *testing.T) {
	keyer := NewDefaultKeyer()

	key1, _ := keyer.Key("generate", json.RawMessage(`{"n":10000000000000001}`))
	key2, _ := keyer.Key("generate", json.RawMessage(`{"n":10000000000000002}`))
	if key1 == key2 {
		t.Error("large integers must not collapse through float64")
	}
}

func TestKeyer_SeedChangesKey(t *testing.T) {
	key1, _ := (&DefaultKeyer{}).Key("generate", "x")
	key2, _ := (&DefaultKeyer{Seed: 42}).Key("generate", "x")
	if key1 == key2 {
		t.Error("seed should change the key")
	}
}

func TestKeyer_MissingOperation(t *testing.T) {
	_, err := NewDefaultKeyer().Key("", "x")
	if !errors.Is(err, ErrMissingOperation) {
		t.Errorf("Key() error = %v, want ErrMissingOperation", err)
	}
}

func TestCanonicalize_NoHTMLEscaping(t *testing.T) {
	got, err := canonicalize(map[string]any{"b": "<tag>", "a": "&"})
	if err != nil {
		t.Fatalf("canonicalize() error = %v", err)
	}
	if string(got) != `{"a":"&","b":"<tag>"}` {
		t.Errorf("canonicalize() = %s", got)
	}
}
