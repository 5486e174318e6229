// Command moderation-smoketest runs the content classifier and link safety
// checker against real provider APIs. Useful when rotating keys or trying a
// new model before pointing the API server at it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/roadway-app/roadway/src/api/moderation"
	"github.com/roadway-app/roadway/src/shared/ai"
)

var (
	providerFlag = flag.String("provider", envOr("AI_PROVIDER", "openai"), "openai|claude")
	modelFlag    = flag.String("model", os.Getenv("AI_MODEL"), "Override model name")
	textFlag     = flag.String("text", "This course was great, the professor explains everything clearly.", "Text to classify")
	linkFlag     = flag.String("link", "", "URL to run through the link safety checker")
	timeoutFlag  = flag.Duration("timeout", 15*time.Second, "Per-check timeout")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	client := ai.NewClient(ai.FactoryConfig{
		Provider:  *providerFlag,
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		ClaudeKey: os.Getenv("CLAUDE_API_KEY"),
		Model:     *modelFlag,
	})

	ctx := context.Background()

	classifier := moderation.NewClassifier(client, *timeoutFlag)
	verdict := classifier.Classify(ctx, *textFlag, *linkFlag)
	printJSON("content verdict", verdict)

	if *linkFlag != "" {
		checker := moderation.NewLinkSafetyChecker(client, *timeoutFlag)
		printJSON("link verdict", checker.CheckLink(ctx, *linkFlag))
	}
}

func printJSON(label string, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("%s: %v", label, err)
	}
	log.Printf("%s:\n%s", label, out)
}
