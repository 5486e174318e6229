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

// LinkChecker assesses URL risk. Same fail-open contract as ContentChecker.
type LinkChecker interface {
	CheckLink(ctx context.Context, url string) LinkVerdict
}

const linkCheckerSystemPrompt = `You are a URL safety analyst.
Assess the submitted URL for phishing, malware distribution, scams, and
suspicious domain signals (typosquatting, URL shorteners hiding targets,
punycode lookalikes, non-standard ports).

Respond with ONLY a JSON object, no other text:
{"isSafe": bool, "riskLevel": "low"|"medium"|"high", "reason": "short explanation", "warnings": ["specific signal", ...]}`

// LinkSafetyChecker wraps the AI client for URL risk assessment.
type LinkSafetyChecker struct {
	client  ai.Client
	timeout time.Duration
}

func NewLinkSafetyChecker(client ai.Client, timeout time.Duration) *LinkSafetyChecker {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &LinkSafetyChecker{client: client, timeout: timeout}
}

// CheckLink validates the URL locally, then asks the external capability
// for a risk assessment. A malformed URL is unsafe without any external
// call; an external failure is safe (fail-open).
func (l *LinkSafetyChecker) CheckLink(ctx context.Context, url string) LinkVerdict {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http") {
		return LinkVerdict{
			IsSafe:    false,
			RiskLevel: SeverityHigh,
			Reason:    "invalid URL format",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	out, err := l.client.Complete(ctx, "URL to assess:\n"+url, ai.Options{SystemPrompt: linkCheckerSystemPrompt})
	metrics.ClassificationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("moderation: link check failed for %s, allowing: %v", url, err)
		metrics.ClassifierFailures.WithLabelValues("link").Inc()
		return failOpenLinkVerdict()
	}

	verdict, err := parseLinkVerdict(out)
	if err != nil {
		log.Printf("moderation: unparseable link check output for %s, allowing: %v", url, err)
		metrics.ClassifierFailures.WithLabelValues("link").Inc()
		return failOpenLinkVerdict()
	}
	return verdict
}

func failOpenLinkVerdict() LinkVerdict {
	return LinkVerdict{
		IsSafe:    true,
		RiskLevel: SeverityLow,
		Reason:    "link safety check unavailable",
	}
}

func parseLinkVerdict(out string) (LinkVerdict, error) {
	raw, err := extractJSON(out)
	if err != nil {
		return LinkVerdict{}, err
	}
	var v LinkVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return LinkVerdict{}, fmt.Errorf("link verdict: %w", err)
	}
	v.RiskLevel = normalizeSeverity(v.RiskLevel)
	if v.IsSafe {
		v.Warnings = nil
	} else if v.Reason == "" {
		v.Reason = "Suspicious or malicious link detected"
	}
	return v, nil
}
