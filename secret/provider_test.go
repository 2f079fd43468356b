package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("GENOPS_TEST_KEY", "abc")
	p := NewEnvProvider()

	got, err := p.Resolve(context.Background(), "GENOPS_TEST_KEY")
	if err != nil || got != "abc" {
		t.Fatalf("Resolve() = %q, %v", got, err)
	}

	if _, err := p.Resolve(context.Background(), "GENOPS_TEST_UNSET"); !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("expected ErrMissingEnv, got %v", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gemini_api_key"), []byte("s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := NewFileProvider(dir)

	got, err := p.Resolve(context.Background(), "gemini_api_key")
	if err != nil || got != "s3cret" {
		t.Fatalf("Resolve() = %q, %v", got, err)
	}

	if _, err := p.Resolve(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileProvider_RejectsEscape(t *testing.T) {
	p := NewFileProvider(t.TempDir())

	for _, ref := range []string{"../etc/passwd", "/etc/passwd"} {
		if _, err := p.Resolve(context.Background(), ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidRef", ref, err)
		}
	}
}
