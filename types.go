package nope

// Ptr returns a pointer to v. It is a convenience for populating the
// optional fields of EvaluateConfig:
//
//	config := &nope.EvaluateConfig{
//		UserCountry: nope.Ptr("US"),
//		DryRun:      nope.Ptr(true),
//	}
func Ptr[T any](v T) *T { return &v }

// Role identifies who authored a message in the conversation.
type Role string

const (
	// RoleUser marks a message written by the end user being assessed.
	RoleUser Role = "user"
	// RoleAssistant marks a message written by the AI assistant.
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string { return string(r) }

func (r Role) valid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single turn in the conversation under assessment.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Timestamp is an optional ISO 8601 timestamp for the message.
	Timestamp string `json:"timestamp,omitempty"`
}

// AgeBand is the end user's age band. It affects which response templates
// the server selects.
type AgeBand string

const (
	AgeBandAdult   AgeBand = "adult"
	AgeBandMinor   AgeBand = "minor"
	AgeBandUnknown AgeBand = "unknown"
)

// SafetyMode controls how the server produces the recommended reply.
type SafetyMode string

const (
	// SafetyModeTemplate selects a pre-written reply template.
	SafetyModeTemplate SafetyMode = "template"
	// SafetyModeGenerate generates and validates a reply with an LLM.
	SafetyModeGenerate SafetyMode = "generate"
)

// EvaluateConfig holds the optional knobs for an evaluation request. Every
// field is optional; fields left nil are omitted from the payload entirely so
// the server's documented defaults apply. The client never fills in defaults
// locally.
type EvaluateConfig struct {
	// UserCountry is the user's ISO country code, used to select crisis
	// resources (e.g. "US", "GB").
	UserCountry *string `json:"user_country,omitempty"`

	// Locale selects language/region for resources and replies
	// (e.g. "en-US", "es-MX").
	Locale *string `json:"locale,omitempty"`

	// UserAgeBand is the user's age band. Server default: adult.
	UserAgeBand *AgeBand `json:"user_age_band,omitempty"`

	// PolicyID selects the evaluation policy. Server default: "default_mh".
	PolicyID *string `json:"policy_id,omitempty"`

	// DryRun evaluates without logging or triggering webhooks.
	// Server default: false.
	DryRun *bool `json:"dry_run,omitempty"`

	// ReturnAssistantReply asks the server to include a safe assistant
	// reply in the response. Server default: true.
	ReturnAssistantReply *bool `json:"return_assistant_reply,omitempty"`

	// AssistantSafetyMode controls how the recommended reply is produced.
	AssistantSafetyMode *SafetyMode `json:"assistant_safety_mode,omitempty"`

	// UseMultipleJudges runs several judges for higher confidence.
	// Server default: false.
	UseMultipleJudges *bool `json:"use_multiple_judges,omitempty"`

	// Models pins the exact models to use, bypassing adaptive selection.
	Models []string `json:"models,omitempty"`

	// ConversationID is a caller-provided conversation ID for webhook
	// correlation.
	ConversationID *string `json:"conversation_id,omitempty"`

	// EndUserID is a caller-provided end-user ID for webhook correlation.
	EndUserID *string `json:"end_user_id,omitempty"`
}

// EvaluateRequest is the request type for the Evaluate method. Exactly one
// of Messages or Text must be set; Evaluate rejects the request before any
// network call otherwise.
type EvaluateRequest struct {
	// Messages is the ordered conversation to assess. An empty slice counts
	// as no input: the request fails locally with ErrNoInput rather than
	// being sent for the server to reject.
	Messages []Message `json:"messages,omitempty"`

	// Text is a plain-text input to assess, for callers without structured
	// conversation history.
	Text string `json:"text,omitempty"`

	// Config holds the optional evaluation knobs.
	Config *EvaluateConfig `json:"config,omitempty"`

	// UserContext is free-text context about the user to help shape
	// responses.
	UserContext string `json:"user_context,omitempty"`

	// ProposedResponse is a candidate AI reply to evaluate for
	// appropriateness alongside the conversation.
	ProposedResponse string `json:"proposed_response,omitempty"`
}

func (r *EvaluateRequest) validate() error {
	hasMessages := len(r.Messages) > 0
	hasText := r.Text != ""
	switch {
	case !hasMessages && !hasText:
		return ErrNoInput
	case hasMessages && hasText:
		return ErrBothInputs
	}
	return nil
}

// EvaluateRequestBuilder simplifies the construction of an EvaluateRequest.
// Create the builder with NewEvaluateRequestBuilder, chain the setters, then
// call Build to create the request.
//
// Example:
//
//	req := nope.NewEvaluateRequestBuilder().
//		AddMessage(nope.RoleUser, "I feel hopeless").
//		Config(&nope.EvaluateConfig{UserCountry: nope.Ptr("US")}).
//		Build()
type EvaluateRequestBuilder struct {
	messages         []Message
	text             string
	config           *EvaluateConfig
	userContext      string
	proposedResponse string
}

// NewEvaluateRequestBuilder creates a new EvaluateRequestBuilder.
func NewEvaluateRequestBuilder() *EvaluateRequestBuilder {
	return &EvaluateRequestBuilder{}
}

// AddMessage appends a message to the conversation.
func (b *EvaluateRequestBuilder) AddMessage(role Role, content string) *EvaluateRequestBuilder {
	b.messages = append(b.messages, Message{Role: role, Content: content})
	return b
}

// Messages replaces the conversation with the given messages.
func (b *EvaluateRequestBuilder) Messages(messages ...Message) *EvaluateRequestBuilder {
	b.messages = messages
	return b
}

// Text sets a plain-text input instead of structured messages.
func (b *EvaluateRequestBuilder) Text(text string) *EvaluateRequestBuilder {
	b.text = text
	return b
}

// Config sets the evaluation config for the request.
func (b *EvaluateRequestBuilder) Config(config *EvaluateConfig) *EvaluateRequestBuilder {
	b.config = config
	return b
}

// UserContext sets free-text user context for the request.
func (b *EvaluateRequestBuilder) UserContext(userContext string) *EvaluateRequestBuilder {
	b.userContext = userContext
	return b
}

// ProposedResponse sets a candidate AI reply to evaluate.
func (b *EvaluateRequestBuilder) ProposedResponse(proposed string) *EvaluateRequestBuilder {
	b.proposedResponse = proposed
	return b
}

// Build creates a new EvaluateRequest from the builder.
func (b *EvaluateRequestBuilder) Build() *EvaluateRequest {
	return &EvaluateRequest{
		Messages:         b.messages,
		Text:             b.text,
		Config:           b.config,
		UserContext:      b.userContext,
		ProposedResponse: b.proposedResponse,
	}
}
