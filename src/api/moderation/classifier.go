package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/roadway-app/roadway/src/api/metrics"
	"github.com/roadway-app/roadway/src/shared/ai"
)

// ContentChecker classifies post text. Implementations must not fail:
// infrastructure problems degrade to a clean verdict (fail-open), because a
// classifier outage must never block legitimate posting.
type ContentChecker interface {
	Classify(ctx context.Context, text, linkURL string) Verdict
}

const classifierSystemPrompt = `You are a strict content moderator for a student community platform.
Check the submitted content for these violation categories:
1. hate_speech: hate speech, slurs, discrimination
2. abusive: harassment, bullying, personal attacks
3. explicit: sexual or +18 content
4. violence: threats, glorification of violence, graphic content
5. spam: scams, malicious intent, repetitive junk

Respond with ONLY a JSON object, no other text:
{"isViolation": bool, "reason": "short human-readable reason, empty if clean", "severity": "low"|"medium"|"high", "violationTypes": ["hate_speech"|"abusive"|"explicit"|"violence"|"spam"]}`

// Classifier wraps the AI client with the moderation instruction set.
type Classifier struct {
	client  ai.Client
	timeout time.Duration
}

func NewClassifier(client ai.Client, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Classifier{client: client, timeout: timeout}
}

// Classify runs the five-category check on the given text. Empty input is
// trivially clean and never reaches the external service.
func (c *Classifier) Classify(ctx context.Context, text, linkURL string) Verdict {
	text = strings.TrimSpace(text)
	if text == "" && linkURL == "" {
		return Verdict{}
	}

	prompt := "Content to moderate:\n" + text
	if linkURL != "" {
		prompt += "\n\nAttached link: " + linkURL
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.client.Complete(ctx, prompt, ai.Options{SystemPrompt: classifierSystemPrompt})
	metrics.ClassificationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("moderation: content classification failed, allowing: %v", err)
		metrics.ClassifierFailures.WithLabelValues("content").Inc()
		return Verdict{}
	}

	verdict, err := parseVerdict(out)
	if err != nil {
		log.Printf("moderation: unparseable classifier output, allowing: %v", err)
		metrics.ClassifierFailures.WithLabelValues("content").Inc()
		return Verdict{}
	}
	return verdict
}

// parseVerdict extracts the JSON verdict from a completion. Models sometimes
// wrap JSON in code fences or prose; take the outermost object.
func parseVerdict(out string) (Verdict, error) {
	raw, err := extractJSON(out)
	if err != nil {
		return Verdict{}, err
	}
	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Verdict{}, fmt.Errorf("verdict: %w", err)
	}
	v.Severity = normalizeSeverity(v.Severity)
	if !v.IsViolation {
		// Keep clean verdicts canonical regardless of model chatter.
		return Verdict{}, nil
	}
	if v.Reason == "" {
		v.Reason = "Content violates community guidelines"
	}
	return v, nil
}

func extractJSON(out string) (string, error) {
	start := strings.IndexByte(out, '{')
	end := strings.LastIndexByte(out, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in %q", truncate(out, 120))
	}
	return out[start : end+1], nil
}

func normalizeSeverity(s string) string {
	switch strings.ToLower(s) {
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	default:
		return SeverityLow
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
