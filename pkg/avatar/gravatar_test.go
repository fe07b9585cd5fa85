package avatar

import (
	"strings"
	"testing"
)

func TestGravatarResolve(t *testing.T) {
	r := NewGravatarResolver(250)

	// md5("user@example.com") = b58996c504c5638798eb6b511e6f49af
	url, err := r.Resolve("user@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(url, "b58996c504c5638798eb6b511e6f49af") {
		t.Errorf("Expected URL to contain the email hash, got %s", url)
	}
	if !strings.Contains(url, "s=250") {
		t.Errorf("Expected URL to contain the size param, got %s", url)
	}
}

func TestGravatarResolveNormalizesEmail(t *testing.T) {
	r := NewGravatarResolver(0)

	a, err := r.Resolve("  User@Example.COM ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := r.Resolve("user@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("Expected normalized emails to resolve identically: %s vs %s", a, b)
	}
}

func TestGravatarResolveEmptyEmail(t *testing.T) {
	r := NewGravatarResolver(100)
	if _, err := r.Resolve("   "); err == nil {
		t.Error("Expected error for empty email")
	}
}
