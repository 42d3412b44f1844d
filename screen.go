package nope

import "encoding/json"

// ScreenRequest is the request type for the Screen method. Exactly one of
// Messages or Text must be set, same as EvaluateRequest.
type ScreenRequest struct {
	Messages []Message       `json:"messages,omitempty"`
	Text     string          `json:"text,omitempty"`
	Config   *EvaluateConfig `json:"config,omitempty"`
}

func (r *ScreenRequest) validate() error {
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

// ScreenResource is a single resource suggested by the screen endpoint. It
// is a deliberately small shape; the full CrisisResource detail is only
// available from Evaluate.
type ScreenResource struct {
	Type CrisisResourceType `json:"type"`
	Name string             `json:"name"`
	// Phone is the dial or text number, when the resource has one.
	Phone string `json:"phone,omitempty"`
	// Why is a one-line explanation of why this resource was suggested.
	Why string `json:"why,omitempty"`
}

func (r *ScreenResource) validate() error {
	if !r.Type.valid() {
		return badField("type", r.Type)
	}
	if r.Name == "" {
		return missingField("name")
	}
	return nil
}

// ScreenResources groups the resources returned by the screen endpoint.
type ScreenResources struct {
	Primary   *ScreenResource  `json:"primary,omitempty"`
	Secondary []ScreenResource `json:"secondary,omitempty"`
}

// ScreenResponse is the result of the lightweight screen endpoint: boolean
// flags rather than a full assessment. Use Evaluate when you need severity,
// imminence or the per-domain breakdown.
type ScreenResponse struct {
	// SuicidalIdeation reports whether suicidal ideation was detected.
	SuicidalIdeation bool `json:"suicidal_ideation"`
	// SelfHarm reports whether self-harm signals were detected.
	SelfHarm bool `json:"self_harm"`
	// ShowResources reports whether crisis resources should be surfaced to
	// the user.
	ShowResources bool `json:"show_resources"`
	// Resources holds the suggested resources when ShowResources is true.
	Resources *ScreenResources `json:"resources,omitempty"`
}

func (r *ScreenResponse) validate() error {
	if r.Resources == nil {
		return nil
	}
	if r.Resources.Primary != nil {
		if err := r.Resources.Primary.validate(); err != nil {
			return err
		}
	}
	for i := range r.Resources.Secondary {
		if err := r.Resources.Secondary[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func decodeScreenResponse(body []byte) (*ScreenResponse, error) {
	var resp ScreenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SchemaError{Err: err}
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}
