package mail

import (
	"strings"
	"testing"
)

func TestRenderConfirmEmail(t *testing.T) {
	tmpl, err := ParseTemplates()
	if err != nil {
		t.Fatalf("Unexpected error parsing templates: %v", err)
	}

	body, err := Render(tmpl, TemplateConfirmEmail, map[string]any{
		"Username": "ann",
		"Host":     "http://localhost:8080/",
		"Token":    "tok-123",
	})
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	if !strings.Contains(body, "tok-123") {
		t.Error("Expected rendered body to contain the token")
	}
	// sprig's title function capitalizes the username
	if !strings.Contains(body, "Ann") {
		t.Error("Expected rendered body to contain the titled username")
	}
	if !strings.Contains(body, "http://localhost:8080/api/auth/confirmed_email/tok-123") {
		t.Error("Expected rendered body to contain the confirmation link")
	}
}

func TestRenderResetPassword(t *testing.T) {
	tmpl, err := ParseTemplates()
	if err != nil {
		t.Fatalf("Unexpected error parsing templates: %v", err)
	}

	body, err := Render(tmpl, TemplateResetPassword, map[string]any{
		"Username": "lee",
		"Host":     "http://localhost:8080/",
		"Token":    "reset-456",
	})
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	if !strings.Contains(body, "reset-456") {
		t.Error("Expected rendered body to contain the reset token")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	tmpl, err := ParseTemplates()
	if err != nil {
		t.Fatalf("Unexpected error parsing templates: %v", err)
	}

	if _, err := Render(tmpl, "missing.html", nil); err == nil {
		t.Error("Expected error for unknown template name")
	}
}
