// Package nope provides the official Go SDK for the NOPE risk-assessment API.
//
// NOPE is a safety layer for chat products and LLM applications. It analyzes
// conversations for mental-health and safeguarding risk and returns a typed
// assessment: per-domain severity and imminence, legal/clinical flags,
// region-appropriate crisis resources and an optional safe reply the caller
// can surface directly. All analysis happens server-side; this SDK owns the
// request/response contract and the error taxonomy.
//
// # Quick Start
//
// You'll need a NOPE API key, or use demo mode (see below) to evaluate
// without one.
//
//	import "github.com/nope-net/nope-go"
//
//	// Create a client
//	client, err := nope.New(nope.WithAPIKey("nope_live_..."))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Evaluate a conversation
//	resp, err := client.Evaluate(context.Background(), &nope.EvaluateRequest{
//		Messages: []nope.Message{
//			{Role: nope.RoleUser, Content: "I feel hopeless"},
//		},
//		Config: &nope.EvaluateConfig{UserCountry: nope.Ptr("US")},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println("severity:", resp.Global.OverallSeverity)
//	for _, r := range resp.CrisisResources {
//		fmt.Printf("  %s: %s\n", r.Name, r.Phone)
//	}
//
// # Inputs
//
// Evaluate accepts exactly one of a structured conversation (Messages) or a
// plain-text input (Text). Supplying both, or neither, fails with
// ErrBothInputs or ErrNoInput before any network call. Optional knobs go in
// EvaluateConfig; fields left nil are omitted from the payload so the
// server's documented defaults apply.
//
// # Error Handling
//
// Every failure surfaces as a typed error:
//
//   - AuthError (401/403): credentials are wrong or missing.
//   - ValidationError (400/422): the server rejected the payload.
//   - RateLimitError (429): carries RetryAfter seconds when the server sent
//     a Retry-After header.
//   - ServerError (5xx): safe to retry, Evaluate has no side effects.
//   - ConnectionError: DNS failure, reset or timeout; wraps the underlying
//     transport error.
//   - SchemaError: a 2xx body that does not match the documented shape.
//
// Use errors.As to branch on them:
//
//	var rateErr *nope.RateLimitError
//	if errors.As(err, &rateErr) && rateErr.RetryAfter != nil {
//		time.Sleep(time.Duration(*rateErr.RetryAfter * float64(time.Second)))
//	}
//
// # Retries
//
// The client never retries on its own. To opt in to automatic retries of
// rate-limit, server and connection errors with exponential backoff:
//
//	client, err := nope.New(
//		nope.WithAPIKey("nope_live_..."),
//		nope.WithRetryConfig(nope.DefaultRetryConfig()),
//	)
//
// # Demo Mode
//
// WithDemo routes requests to the unauthenticated /v1/try/* endpoints so you
// can evaluate the API without credentials:
//
//	client, err := nope.New(nope.WithDemo())
//
// # Screening
//
// Screen is a cheaper boolean check (suicidal ideation, self harm, whether
// to show resources) for callers that gate on a yes/no rather than a full
// assessment.
//
// For more information and examples, visit: https://docs.nope.net
package nope
