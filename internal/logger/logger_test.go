package logger

import "testing"

func TestSanitizeRedactsSecretsAndHashesUserIDs(t *testing.T) {
	l := Nop()
	out := l.sanitize([]any{
		"openai_api_key", "sk-live",
		"user_id", "user-123",
		"content", "slept 5 hours",
		"attempt", 2,
	})
	if len(out) != 8 {
		t.Fatalf("expected 8 values, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected api key redacted, got %v", out[1])
	}
	hashed, _ := out[3].(string)
	if hashed == "user-123" || len(hashed) != len("hash:")+12 {
		t.Fatalf("expected hashed user id, got %q", hashed)
	}
	if out[5] != "[13 chars]" {
		t.Fatalf("expected content length marker, got %v", out[5])
	}
	if out[7] != 2 {
		t.Fatalf("expected plain value kept, got %v", out[7])
	}
}

func TestSanitizeKeepsOddTrailingValue(t *testing.T) {
	out := Nop().sanitize([]any{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestWithoutRedactionPassesValuesThrough(t *testing.T) {
	out := Nop().WithoutRedaction().sanitize([]any{"token", "abc"})
	if out[1] != "abc" {
		t.Fatalf("expected raw value, got %v", out[1])
	}
}
