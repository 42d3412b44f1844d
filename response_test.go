package nope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainAssessments_Unmarshal(t *testing.T) {
	body := []byte(`[
		{
			"domain": "self",
			"self_subtype": "suicidal_or_self_injury",
			"severity": "high",
			"imminence": "urgent",
			"confidence": 0.91,
			"risk_features": ["plan", "means_access"],
			"reasoning": "Active plan with access to means."
		},
		{
			"domain": "others",
			"severity": "mild",
			"imminence": "chronic",
			"confidence": 0.4,
			"risk_features": []
		},
		{
			"domain": "dependent_at_risk",
			"dependent_subtype": "child",
			"severity": "moderate",
			"imminence": "subacute",
			"confidence": 0.7,
			"risk_features": ["neglect_indicators"]
		},
		{
			"domain": "victimisation",
			"victimisation_subtype": "IPV_intimate_partner",
			"severity": "high",
			"imminence": "urgent",
			"confidence": 0.85,
			"risk_features": ["strangulation_disclosure"],
			"risk_types": ["physical"]
		}
	]`)

	var domains DomainAssessments
	require.NoError(t, json.Unmarshal(body, &domains))
	require.Len(t, domains, 4)

	self, ok := domains[0].(SelfAssessment)
	require.True(t, ok, "expected SelfAssessment, got %T", domains[0])
	assert.Equal(t, DomainSelf, self.Domain())
	assert.Equal(t, SelfSubtypeSuicidalOrSelfInjury, self.Subtype)
	assert.Equal(t, SeverityHigh, self.Severity)
	assert.Equal(t, ImminenceUrgent, self.Imminence)
	assert.Equal(t, []string{"plan", "means_access"}, self.RiskFeatures)

	others, ok := domains[1].(OthersAssessment)
	require.True(t, ok, "expected OthersAssessment, got %T", domains[1])
	assert.Equal(t, DomainOthers, others.Domain())
	assert.Equal(t, SeverityMild, others.Severity)

	dependent, ok := domains[2].(DependentAtRiskAssessment)
	require.True(t, ok, "expected DependentAtRiskAssessment, got %T", domains[2])
	assert.Equal(t, DependentSubtypeChild, dependent.Subtype)

	victim, ok := domains[3].(VictimisationAssessment)
	require.True(t, ok, "expected VictimisationAssessment, got %T", domains[3])
	assert.Equal(t, VictimisationIntimatePartner, victim.Subtype)
	assert.Equal(t, []string{"physical"}, victim.RiskTypes)

	// Core gives uniform access across variants.
	for _, d := range domains {
		assert.True(t, d.Core().Severity.valid())
	}
}

func TestDomainAssessments_UnknownDiscriminant(t *testing.T) {
	body := []byte(`[{"domain": "cosmic", "severity": "none", "imminence": "not_applicable", "confidence": 0.5, "risk_features": []}]`)

	var domains DomainAssessments
	err := json.Unmarshal(body, &domains)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "domain", schemaErr.Field)
	assert.Equal(t, "cosmic", schemaErr.Value)
}

func TestDecodeEvaluateResponse_Validation(t *testing.T) {
	valid := func(mutate func(m map[string]any)) []byte {
		m := map[string]any{
			"domains": []any{map[string]any{
				"domain":        "self",
				"self_subtype":  "other",
				"severity":      "mild",
				"imminence":     "chronic",
				"confidence":    0.5,
				"risk_features": []any{},
			}},
			"global": map[string]any{
				"overall_severity":  "mild",
				"overall_imminence": "chronic",
				"primary_concerns":  []any{},
			},
			"confidence":       0.5,
			"crisis_resources": []any{},
		}
		if mutate != nil {
			mutate(m)
		}
		body, _ := json.Marshal(m)
		return body
	}

	domain := func(m map[string]any) map[string]any {
		return m["domains"].([]any)[0].(map[string]any)
	}

	tests := []struct {
		name      string
		mutate    func(m map[string]any)
		wantField string
	}{
		{
			name: "baseline is valid",
		},
		{
			name:      "unknown severity in domain",
			mutate:    func(m map[string]any) { domain(m)["severity"] = "catastrophic" },
			wantField: "severity",
		},
		{
			name:      "unknown imminence in domain",
			mutate:    func(m map[string]any) { domain(m)["imminence"] = "someday" },
			wantField: "imminence",
		},
		{
			name:      "domain confidence above one",
			mutate:    func(m map[string]any) { domain(m)["confidence"] = 1.5 },
			wantField: "confidence",
		},
		{
			name:      "unknown self subtype",
			mutate:    func(m map[string]any) { domain(m)["self_subtype"] = "mystery" },
			wantField: "self_subtype",
		},
		{
			name:      "top-level confidence below zero",
			mutate:    func(m map[string]any) { m["confidence"] = -0.1 },
			wantField: "confidence",
		},
		{
			name: "unknown overall severity",
			mutate: func(m map[string]any) {
				m["global"].(map[string]any)["overall_severity"] = "extreme"
			},
			wantField: "overall_severity",
		},
		{
			name:      "agreement out of range",
			mutate:    func(m map[string]any) { m["agreement"] = 2.0 },
			wantField: "agreement",
		},
		{
			name: "invalid crisis resource type",
			mutate: func(m map[string]any) {
				m["crisis_resources"] = []any{map[string]any{"type": "carrier_pigeon", "name": "x"}}
			},
			wantField: "type",
		},
		{
			name: "invalid IPV risk level",
			mutate: func(m map[string]any) {
				m["legal_flags"] = map[string]any{
					"intimate_partner_violence": map[string]any{
						"risk_level": "apocalyptic",
						"confidence": 0.5,
					},
				}
			},
			wantField: "risk_level",
		},
		{
			name: "invalid recommended reply source",
			mutate: func(m map[string]any) {
				m["recommended_reply"] = map[string]any{"content": "hi", "source": "psychic"}
			},
			wantField: "source",
		},
		{
			name: "unrecognized keys are tolerated",
			mutate: func(m map[string]any) {
				m["future_field"] = map[string]any{"nested": true}
				domain(m)["another_future_field"] = 42
			},
		},
		{
			name:      "missing domains",
			mutate:    func(m map[string]any) { delete(m, "domains") },
			wantField: "domains",
		},
		{
			name:      "missing global",
			mutate:    func(m map[string]any) { delete(m, "global") },
			wantField: "global",
		},
		{
			name:      "missing top-level confidence",
			mutate:    func(m map[string]any) { delete(m, "confidence") },
			wantField: "confidence",
		},
		{
			name:      "missing crisis resources",
			mutate:    func(m map[string]any) { delete(m, "crisis_resources") },
			wantField: "crisis_resources",
		},
		{
			name:      "domain missing confidence",
			mutate:    func(m map[string]any) { delete(domain(m), "confidence") },
			wantField: "confidence",
		},
		{
			name:      "domain missing risk features",
			mutate:    func(m map[string]any) { delete(domain(m), "risk_features") },
			wantField: "risk_features",
		},
		{
			name:      "domain missing subtype",
			mutate:    func(m map[string]any) { delete(domain(m), "self_subtype") },
			wantField: "self_subtype",
		},
		{
			name: "crisis resource missing name",
			mutate: func(m map[string]any) {
				m["crisis_resources"] = []any{map[string]any{"type": "crisis_line"}}
			},
			wantField: "name",
		},
		{
			name: "recommended reply missing content",
			mutate: func(m map[string]any) {
				m["recommended_reply"] = map[string]any{"source": "template"}
			},
			wantField: "content",
		},
		{
			name: "metadata with unknown api version",
			mutate: func(m map[string]any) {
				m["metadata"] = map[string]any{"api_version": "v2"}
			},
			wantField: "api_version",
		},
		{
			name: "metadata with current api version",
			mutate: func(m map[string]any) {
				m["metadata"] = map[string]any{"api_version": "v1"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := decodeEvaluateResponse(valid(tt.mutate))
			if tt.wantField == "" {
				require.NoError(t, err)
				require.NotNil(t, resp)
				return
			}
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.wantField, schemaErr.Field)
			assert.Nil(t, resp)
		})
	}
}

func TestEvaluateResponse_OptionalSections(t *testing.T) {
	resp, err := decodeEvaluateResponse([]byte(`{
		"domains": [],
		"global": {
			"overall_severity": "high",
			"overall_imminence": "urgent",
			"primary_concerns": ["intimate_partner_violence"],
			"language": "en",
			"locale": "en-GB"
		},
		"legal_flags": {
			"third_party_threat": {
				"present": false,
				"identifiable_victim": false,
				"confidence": 0.9,
				"rationale": "No threat to third parties disclosed."
			},
			"intimate_partner_violence": {
				"risk_level": "severe",
				"confidence": 0.8,
				"strangulation_history": true,
				"evidence_grade": "strong"
			}
		},
		"presentation_modifiers": {"substance_involved": true},
		"safeguarding_flags": {"adult_at_risk": true},
		"protective_factors_info": {
			"protective_factors": ["help_seeking"],
			"protective_factor_strength": "moderate"
		},
		"confidence": 0.8,
		"agreement": 0.75,
		"crisis_resources": [],
		"widget_url": "https://nope.net/w/abc123"
	}`))
	require.NoError(t, err)

	require.NotNil(t, resp.LegalFlags)
	require.NotNil(t, resp.LegalFlags.IntimatePartnerViolence)
	assert.Equal(t, IPVRiskSevere, resp.LegalFlags.IntimatePartnerViolence.RiskLevel)
	require.NotNil(t, resp.LegalFlags.IntimatePartnerViolence.StrangulationHistory)
	assert.True(t, *resp.LegalFlags.IntimatePartnerViolence.StrangulationHistory)
	require.NotNil(t, resp.LegalFlags.IntimatePartnerViolence.EvidenceGrade)
	assert.Equal(t, EvidenceStrong, *resp.LegalFlags.IntimatePartnerViolence.EvidenceGrade)
	assert.Nil(t, resp.LegalFlags.ChildSafeguarding)

	require.NotNil(t, resp.PresentationModifiers)
	require.NotNil(t, resp.PresentationModifiers.SubstanceInvolved)
	assert.True(t, *resp.PresentationModifiers.SubstanceInvolved)
	assert.Nil(t, resp.PresentationModifiers.PsychoticFeatures)

	require.NotNil(t, resp.SafeguardingFlags)
	require.NotNil(t, resp.SafeguardingFlags.AdultAtRisk)
	assert.True(t, *resp.SafeguardingFlags.AdultAtRisk)

	require.NotNil(t, resp.ProtectiveFactorsInfo)
	require.NotNil(t, resp.ProtectiveFactorsInfo.ProtectiveFactorStrength)
	assert.Equal(t, FactorStrengthModerate, *resp.ProtectiveFactorsInfo.ProtectiveFactorStrength)

	require.NotNil(t, resp.Agreement)
	assert.InDelta(t, 0.75, *resp.Agreement, 1e-9)
	assert.Equal(t, "https://nope.net/w/abc123", resp.WidgetURL)
	assert.Equal(t, "en-GB", resp.Global.Locale)
}

func TestDomainAssessment_MarshalRoundTrip(t *testing.T) {
	original := DomainAssessments{
		SelfAssessment{
			AssessmentCore: AssessmentCore{
				Severity:     SeverityModerate,
				Imminence:    ImminenceSubacute,
				Confidence:   0.6,
				RiskFeatures: []string{"hopelessness"},
			},
			Subtype: SelfSubtypeSuicidalOrSelfInjury,
		},
		DependentAtRiskAssessment{
			AssessmentCore: AssessmentCore{
				Severity:     SeverityHigh,
				Imminence:    ImminenceUrgent,
				Confidence:   0.8,
				RiskFeatures: []string{"immediate_danger"},
			},
			Subtype: DependentSubtypeChild,
		},
	}

	body, err := json.Marshal(original)
	require.NoError(t, err)

	// The discriminant is present in the wire form.
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "self", raw[0]["domain"])
	assert.Equal(t, "dependent_at_risk", raw[1]["domain"])

	var decoded DomainAssessments
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, original, decoded)
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityModerate.AtLeast(SeverityModerate))
	assert.False(t, SeverityMild.AtLeast(SeverityHigh))
	assert.Equal(t, 0, SeverityNone.Rank())
	assert.Equal(t, 4, SeverityCritical.Rank())
	assert.Equal(t, -1, Severity("catastrophic").Rank())

	assert.True(t, ImminenceEmergency.AtLeast(ImminenceUrgent))
	assert.False(t, ImminenceChronic.AtLeast(ImminenceSubacute))
	assert.Equal(t, -1, Imminence("never").Rank())
}
