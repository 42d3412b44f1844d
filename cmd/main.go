package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	nope "github.com/nope-net/nope-go"
)

func main() {
	// Load .env if present; environment variables win.
	_ = godotenv.Load()

	apiKey := os.Getenv("NOPE_API_KEY")

	var options []nope.Option
	if apiKey != "" {
		options = append(options, nope.WithAPIKey(apiKey))
	} else {
		fmt.Println("NOPE_API_KEY not set, using demo mode (/v1/try/* endpoints)")
		options = append(options, nope.WithDemo())
	}
	if baseURL := os.Getenv("NOPE_BASE_URL"); baseURL != "" {
		options = append(options, nope.WithBaseURL(baseURL))
	}

	client, err := nope.New(options...)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	fmt.Printf("Testing NOPE SDK against %s...\n", client.BaseURL())

	// A conversation id lets webhook events be correlated back to this run.
	conversationID := uuid.NewString()

	req := nope.NewEvaluateRequestBuilder().
		AddMessage(nope.RoleUser, "I've been feeling really down lately").
		AddMessage(nope.RoleAssistant, "I hear you. Can you tell me more?").
		AddMessage(nope.RoleUser, "I just feel hopeless, like nothing will get better").
		Config(&nope.EvaluateConfig{
			UserCountry:    nope.Ptr("US"),
			ConversationID: nope.Ptr(conversationID),
		}).
		Build()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Evaluate(ctx, req)
	if err != nil {
		var authErr *nope.AuthError
		if errors.As(err, &authErr) {
			log.Fatalf("Authentication failed (status %d): %s", authErr.StatusCode, authErr.Message)
		}

		var rateErr *nope.RateLimitError
		if errors.As(err, &rateErr) {
			if rateErr.RetryAfter != nil {
				log.Fatalf("Rate limited, retry after %.0fs", *rateErr.RetryAfter)
			}
			log.Fatal("Rate limited, no Retry-After hint")
		}

		var connErr *nope.ConnectionError
		if errors.As(err, &connErr) {
			if connErr.Timeout {
				log.Fatalf("Request timed out: %v", connErr.Err)
			}
			log.Fatalf("Could not reach the API: %v", connErr.Err)
		}

		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("\nEvaluation completed (conversation %s)\n", conversationID)
	fmt.Printf("Overall severity:  %s\n", resp.Global.OverallSeverity)
	fmt.Printf("Overall imminence: %s\n", resp.Global.OverallImminence)
	fmt.Printf("Confidence:        %.2f\n", resp.Confidence)

	if len(resp.Global.PrimaryConcerns) > 0 {
		fmt.Println("\nPrimary concerns:")
		for _, concern := range resp.Global.PrimaryConcerns {
			fmt.Printf("  - %s\n", concern)
		}
	}

	if len(resp.Domains) > 0 {
		fmt.Println("\nDomain assessments:")
		for _, d := range resp.Domains {
			core := d.Core()
			fmt.Printf("  - %s: severity=%s imminence=%s confidence=%.2f\n",
				d.Domain(), core.Severity, core.Imminence, core.Confidence)
		}
	}

	if len(resp.CrisisResources) > 0 {
		fmt.Println("\nCrisis resources:")
		for _, r := range resp.CrisisResources {
			line := r.Name
			if r.Phone != "" {
				line += ": " + r.Phone
			}
			fmt.Printf("  - %s\n", line)
		}
	}

	if resp.RecommendedReply != nil {
		fmt.Printf("\nRecommended reply (%s):\n  %s\n",
			resp.RecommendedReply.Source, resp.RecommendedReply.Content)
	}
}
