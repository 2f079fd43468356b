package cache

import (
	"testing"

	"pgregory.net/rapid"
)

func TestHash53_Deterministic(t *testing.T) {
	inputs := []string{"", "a", "resume_rewrite", "héllo wörld", "emoji 🚀 input", `{"a":1}`}
	for _, in := range inputs {
		if Hash53(in, 0) != Hash53(in, 0) {
			t.Errorf("Hash53(%q) is not deterministic", in)
		}
	}
}

func TestHash53_Sensitivity(t *testing.T) {
	if Hash53("abc", 0) == Hash53("abd", 0) {
		t.Error("different inputs should hash differently")
	}
	if Hash53("abc", 0) == Hash53("abc", 1) {
		t.Error("different seeds should hash differently")
	}
	if Hash53("", 0) == Hash53("", 7) {
		t.Error("seed should affect the empty string hash")
	}
}

func TestHash53_Range(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		seed := rapid.Uint32().Draw(t, "seed")
		if h := Hash53(s, seed); h >= MaxHash {
			t.Fatalf("Hash53(%q, %d) = %d, exceeds 2^53", s, seed, h)
		}
	})
}

func TestHash53_SupplementaryCharacters(t *testing.T) {
	// Astral characters encode as two UTF-16 units and must not collide
	// with their surrogate-free neighbours.
	if Hash53("🚀", 0) == Hash53("🚁", 0) {
		t.Error("adjacent astral characters should hash differently")
	}
}

func TestHashValue_StructAndMapAgree(t *testing.T) {
	type query struct {
		Title    string `json:"title"`
		Location string `json:"location"`
	}

	h1, err := HashValue(query{Title: "engineer", Location: "remote"}, 0)
	if err != nil {
		t.Fatalf("HashValue() error = %v", err)
	}
	h2, err := HashValue(map[string]any{"location": "remote", "title": "engineer"}, 0)
	if err != nil {
		t.Fatalf("HashValue() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("struct and equivalent map should hash identically: %d != %d", h1, h2)
	}
}

func TestHashValue_Unsupported(t *testing.T) {
	if _, err := HashValue(make(chan int), 0); err == nil {
		t.Error("expected error for unencodable input")
	}
}
