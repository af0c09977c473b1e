package errors

import (
	"fmt"
	"testing"
)

func TestNewUsesDefaultKind(t *testing.T) {
	cases := []struct {
		code Code
		want Kind
	}{
		{CodeConfigMissingAPIKey, KindConfig},
		{CodeGeneratorAuth, KindAuth},
		{CodeGeneratorRateLimited, KindRateLimit},
		{CodeGeneratorUnreachable, KindConnectivity},
		{CodeGeneratorBackend, KindBackend},
		{CodeScenarioMalformed, KindMalformed},
		{CodeFrameOutOfRange, KindInvalid},
		{CodeNotFound, KindNotFound},
		{CodeUnknown, KindUnknown},
	}
	for _, tc := range cases {
		err := New(tc.code, "boom")
		if err.Kind != tc.want {
			t.Fatalf("code %s: expected kind %v, got %v", tc.code, tc.want, err.Kind)
		}
	}
}

func TestKindOfAndCodeOfThroughWrapping(t *testing.T) {
	inner := New(CodeGeneratorRateLimited, "too many requests")
	outer := fmt.Errorf("generate scenario: %w", inner)

	if KindOf(outer) != KindRateLimit {
		t.Fatalf("expected rate limit kind, got %v", KindOf(outer))
	}
	if CodeOf(outer) != CodeGeneratorRateLimited {
		t.Fatalf("expected rate limited code, got %v", CodeOf(outer))
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(fmt.Errorf("plain")) != KindUnknown {
		t.Fatal("expected unknown kind for unclassified error")
	}
	if CodeOf(nil) != CodeUnknown {
		t.Fatal("expected unknown code for nil error")
	}
}

func TestWrapKeepsChain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeGeneratorUnreachable, "invoke generator", cause)

	if !Is(err, cause) {
		t.Fatal("expected wrapped cause to match errors.Is")
	}
	if err.Error() != "invoke generator: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindString(t *testing.T) {
	if KindRateLimit.String() != "rate_limit" {
		t.Fatalf("unexpected kind name %q", KindRateLimit.String())
	}
	if Kind(99).String() != "unknown" {
		t.Fatalf("unexpected fallback name %q", Kind(99).String())
	}
}
