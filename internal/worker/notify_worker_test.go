package worker

import (
	"strings"
	"testing"

	"github.com/testgest/testgest-backend/internal/notify"
)

func TestRenderMailRegistered(t *testing.T) {
	subject, body, err := renderMail(notify.Payload{
		Kind:  notify.KindRegistered,
		Name:  "Ana",
		Email: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("renderMail: %v", err)
	}
	if subject != "Registration received" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Hello Ana") {
		t.Errorf("body missing greeting: %q", body)
	}
}

func TestRenderMailValidatedIncludesAccessCode(t *testing.T) {
	_, body, err := renderMail(notify.Payload{
		Kind:       notify.KindValidated,
		Name:       "Ana",
		AccessCode: "AB12CD34",
	})
	if err != nil {
		t.Fatalf("renderMail: %v", err)
	}
	if !strings.Contains(body, "AB12CD34") {
		t.Errorf("body missing access code: %q", body)
	}
}

func TestRenderMailResultIncludesScore(t *testing.T) {
	_, body, err := renderMail(notify.Payload{
		Kind:       notify.KindResult,
		Name:       "Ana",
		ScoreTotal: 7,
		ScoreMax:   10,
		Percentage: 70,
	})
	if err != nil {
		t.Fatalf("renderMail: %v", err)
	}
	if !strings.Contains(body, "7/10") || !strings.Contains(body, "70.00%") {
		t.Errorf("body missing score: %q", body)
	}
}

func TestRenderMailUnknownKind(t *testing.T) {
	if _, _, err := renderMail(notify.Payload{Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
