package moderation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckLink_InvalidFormat(t *testing.T) {
	stub := &stubAI{out: `{"isSafe": true}`}
	l := NewLinkSafetyChecker(stub, time.Second)

	urls := []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"example.com",
		"",
		"   ",
	}
	for _, url := range urls {
		v := l.CheckLink(context.Background(), url)
		if v.IsSafe {
			t.Errorf("CheckLink(%q).IsSafe = true, want false", url)
		}
		if v.RiskLevel != SeverityHigh {
			t.Errorf("CheckLink(%q).RiskLevel = %q, want high", url, v.RiskLevel)
		}
		if v.Reason != "invalid URL format" {
			t.Errorf("CheckLink(%q).Reason = %q", url, v.Reason)
		}
		if stub.calls != 0 {
			t.Fatalf("external capability called for malformed URL %q", url)
		}
	}
}

func TestCheckLink_FailOpen(t *testing.T) {
	tests := []struct {
		name string
		stub *stubAI
	}{
		{"client error", &stubAI{err: errors.New("timeout")}},
		{"malformed output", &stubAI{out: "no json here"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLinkSafetyChecker(tt.stub, time.Second)
			v := l.CheckLink(context.Background(), "https://example.com")
			if !v.IsSafe {
				t.Errorf("link check failure did not fail open: %+v", v)
			}
			if v.RiskLevel != SeverityLow {
				t.Errorf("RiskLevel = %q, want low", v.RiskLevel)
			}
			if v.Reason == "" {
				t.Error("fail-open verdict should note the check failed")
			}
		})
	}
}

func TestCheckLink_Unsafe(t *testing.T) {
	stub := &stubAI{out: `{"isSafe": false, "riskLevel": "high", "reason": "known phishing domain", "warnings": ["typosquatting", "recently registered"]}`}
	l := NewLinkSafetyChecker(stub, time.Second)

	v := l.CheckLink(context.Background(), "http://paypa1-login.example")
	if v.IsSafe {
		t.Fatal("expected unsafe verdict")
	}
	if v.Reason != "known phishing domain" {
		t.Errorf("Reason = %q", v.Reason)
	}
	if len(v.Warnings) != 2 {
		t.Errorf("Warnings = %v", v.Warnings)
	}
}

func TestCheckLink_SafeDiscardsWarnings(t *testing.T) {
	stub := &stubAI{out: `{"isSafe": true, "riskLevel": "low", "reason": "ok", "warnings": ["none really"]}`}
	l := NewLinkSafetyChecker(stub, time.Second)

	v := l.CheckLink(context.Background(), "https://go.dev")
	if !v.IsSafe {
		t.Fatal("expected safe verdict")
	}
	if len(v.Warnings) != 0 {
		t.Errorf("safe verdict kept warnings: %v", v.Warnings)
	}
}
