package nope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request *EvaluateRequest
		wantErr error
	}{
		{
			name:    "messages only",
			request: &EvaluateRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}},
		},
		{
			name:    "text only",
			request: &EvaluateRequest{Text: "hi"},
		},
		{
			name:    "neither",
			request: &EvaluateRequest{},
			wantErr: ErrNoInput,
		},
		{
			name:    "empty messages slice counts as no input",
			request: &EvaluateRequest{Messages: []Message{}},
			wantErr: ErrNoInput,
		},
		{
			name: "both",
			request: &EvaluateRequest{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
				Text:     "hi",
			},
			wantErr: ErrBothInputs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateRequest_MarshalOmitsUnset(t *testing.T) {
	req := &EvaluateRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Config: &EvaluateConfig{
			UserCountry: Ptr("GB"),
			DryRun:      Ptr(true),
		},
	}

	body, err := json.Marshal(req)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))

	assert.Contains(t, m, "messages")
	assert.NotContains(t, m, "text")
	assert.NotContains(t, m, "user_context")
	assert.NotContains(t, m, "proposed_response")

	config := m["config"].(map[string]any)
	assert.Equal(t, "GB", config["user_country"])
	assert.Equal(t, true, config["dry_run"])
	assert.NotContains(t, config, "locale")
	assert.NotContains(t, config, "policy_id")
	assert.NotContains(t, config, "return_assistant_reply")
	assert.NotContains(t, config, "use_multiple_judges")
	assert.NotContains(t, config, "models")
}

func TestMessage_MarshalOmitsEmptyTimestamp(t *testing.T) {
	body, err := json.Marshal(Message{Role: RoleAssistant, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role": "assistant", "content": "hi"}`, string(body))

	body, err = json.Marshal(Message{
		Role:      RoleUser,
		Content:   "hi",
		Timestamp: "2026-01-15T10:30:00Z",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role": "user", "content": "hi", "timestamp": "2026-01-15T10:30:00Z"}`, string(body))
}

func TestEvaluateConfig_MarshalRoundTrip(t *testing.T) {
	config := &EvaluateConfig{
		UserCountry:          Ptr("US"),
		Locale:               Ptr("en-US"),
		UserAgeBand:          Ptr(AgeBandMinor),
		PolicyID:             Ptr("default_mh"),
		DryRun:               Ptr(false),
		ReturnAssistantReply: Ptr(true),
		AssistantSafetyMode:  Ptr(SafetyModeGenerate),
		UseMultipleJudges:    Ptr(true),
		Models:               []string{"judge-a", "judge-b"},
		ConversationID:       Ptr("conv_123"),
		EndUserID:            Ptr("user_456"),
	}

	body, err := json.Marshal(config)
	require.NoError(t, err)

	var decoded EvaluateConfig
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, config, &decoded)
}

func TestEvaluateRequestBuilder(t *testing.T) {
	t.Run("messages with config", func(t *testing.T) {
		req := NewEvaluateRequestBuilder().
			AddMessage(RoleUser, "I feel hopeless").
			AddMessage(RoleAssistant, "I'm sorry to hear that.").
			AddMessage(RoleUser, "Nothing helps anymore").
			Config(&EvaluateConfig{UserCountry: Ptr("US")}).
			UserContext("19yo college student").
			Build()

		require.Len(t, req.Messages, 3)
		assert.Equal(t, RoleUser, req.Messages[0].Role)
		assert.Equal(t, "I'm sorry to hear that.", req.Messages[1].Content)
		assert.Equal(t, "19yo college student", req.UserContext)
		require.NotNil(t, req.Config)
		assert.NoError(t, req.validate())
	})

	t.Run("text input", func(t *testing.T) {
		req := NewEvaluateRequestBuilder().
			Text("I want to hurt myself").
			Build()

		assert.Empty(t, req.Messages)
		assert.Equal(t, "I want to hurt myself", req.Text)
		assert.NoError(t, req.validate())
	})

	t.Run("messages replaces prior conversation", func(t *testing.T) {
		req := NewEvaluateRequestBuilder().
			AddMessage(RoleUser, "dropped").
			Messages(Message{Role: RoleUser, Content: "kept"}).
			Build()

		require.Len(t, req.Messages, 1)
		assert.Equal(t, "kept", req.Messages[0].Content)
	})

	t.Run("proposed response", func(t *testing.T) {
		req := NewEvaluateRequestBuilder().
			AddMessage(RoleUser, "I took some pills").
			ProposedResponse("Have you tried going for a walk?").
			Build()

		assert.Equal(t, "Have you tried going for a walk?", req.ProposedResponse)
	})

	t.Run("empty builder fails validation", func(t *testing.T) {
		req := NewEvaluateRequestBuilder().Build()
		assert.ErrorIs(t, req.validate(), ErrNoInput)
	})
}

func TestPtr(t *testing.T) {
	s := Ptr("US")
	require.NotNil(t, s)
	assert.Equal(t, "US", *s)

	b := Ptr(true)
	require.NotNil(t, b)
	assert.True(t, *b)
}
