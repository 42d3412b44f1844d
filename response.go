package nope

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Severity is the ordered clinical-risk scale:
// none < mild < moderate < high < critical.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// String returns the string representation of the severity.
func (s Severity) String() string { return string(s) }

// Rank returns the position of the severity on the ordered scale, from 0
// (none) to 4 (critical), or -1 for an unrecognized value.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at or above other on the severity scale.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

func (s Severity) valid() bool { return s.Rank() >= 0 }

// Imminence is the ordered urgency scale:
// not_applicable < chronic < subacute < urgent < emergency.
type Imminence string

const (
	ImminenceNotApplicable Imminence = "not_applicable"
	ImminenceChronic       Imminence = "chronic"
	ImminenceSubacute      Imminence = "subacute"
	ImminenceUrgent        Imminence = "urgent"
	ImminenceEmergency     Imminence = "emergency"
)

var imminenceRank = map[Imminence]int{
	ImminenceNotApplicable: 0,
	ImminenceChronic:       1,
	ImminenceSubacute:      2,
	ImminenceUrgent:        3,
	ImminenceEmergency:     4,
}

// String returns the string representation of the imminence.
func (i Imminence) String() string { return string(i) }

// Rank returns the position of the imminence on the ordered scale, from 0
// (not_applicable) to 4 (emergency), or -1 for an unrecognized value.
func (i Imminence) Rank() int {
	if r, ok := imminenceRank[i]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether i is at or above other on the imminence scale.
func (i Imminence) AtLeast(other Imminence) bool {
	return i.Rank() >= other.Rank()
}

func (i Imminence) valid() bool { return i.Rank() >= 0 }

// EvidenceGrade classifies the evidentiary support behind a clinical
// indicator.
type EvidenceGrade string

const (
	EvidenceStrong    EvidenceGrade = "strong"
	EvidenceModerate  EvidenceGrade = "moderate"
	EvidenceWeak      EvidenceGrade = "weak"
	EvidenceConsensus EvidenceGrade = "consensus"
	EvidenceNone      EvidenceGrade = "none"
)

func (g EvidenceGrade) valid() bool {
	switch g {
	case EvidenceStrong, EvidenceModerate, EvidenceWeak, EvidenceConsensus, EvidenceNone:
		return true
	}
	return false
}

// RiskDomain is the discriminant selecting which DomainAssessment variant a
// record represents.
type RiskDomain string

const (
	// DomainSelf covers risk the speaker poses to themselves.
	DomainSelf RiskDomain = "self"
	// DomainOthers covers risk the speaker poses to other people.
	DomainOthers RiskDomain = "others"
	// DomainDependentAtRisk covers a dependent in the speaker's care.
	DomainDependentAtRisk RiskDomain = "dependent_at_risk"
	// DomainVictimisation covers harm the speaker is experiencing.
	DomainVictimisation RiskDomain = "victimisation"
)

// String returns the string representation of the domain.
func (d RiskDomain) String() string { return string(d) }

// SelfSubtype narrows a self-domain assessment.
type SelfSubtype string

const (
	SelfSubtypeSuicidalOrSelfInjury SelfSubtype = "suicidal_or_self_injury"
	SelfSubtypeSelfNeglect          SelfSubtype = "self_neglect"
	SelfSubtypeOther                SelfSubtype = "other"
)

func (s SelfSubtype) valid() bool {
	switch s {
	case SelfSubtypeSuicidalOrSelfInjury, SelfSubtypeSelfNeglect, SelfSubtypeOther:
		return true
	}
	return false
}

// DependentSubtype narrows a dependent_at_risk assessment.
type DependentSubtype string

const (
	DependentSubtypeChild         DependentSubtype = "child"
	DependentSubtypeAdultAtRisk   DependentSubtype = "adult_at_risk"
	DependentSubtypeAnimalOrOther DependentSubtype = "animal_or_other"
)

func (s DependentSubtype) valid() bool {
	switch s {
	case DependentSubtypeChild, DependentSubtypeAdultAtRisk, DependentSubtypeAnimalOrOther:
		return true
	}
	return false
}

// VictimisationSubtype narrows a victimisation assessment.
type VictimisationSubtype string

const (
	VictimisationIntimatePartner         VictimisationSubtype = "IPV_intimate_partner"
	VictimisationFamilyNonIntimate       VictimisationSubtype = "family_non_intimate"
	VictimisationTraffickingExploitation VictimisationSubtype = "trafficking_exploitation"
	VictimisationCommunityViolence       VictimisationSubtype = "community_violence"
	VictimisationInstitutionalAbuse      VictimisationSubtype = "institutional_abuse"
	VictimisationOther                   VictimisationSubtype = "other"
)

func (s VictimisationSubtype) valid() bool {
	switch s {
	case VictimisationIntimatePartner, VictimisationFamilyNonIntimate,
		VictimisationTraffickingExploitation, VictimisationCommunityViolence,
		VictimisationInstitutionalAbuse, VictimisationOther:
		return true
	}
	return false
}

// AssessmentCore holds the fields shared by every DomainAssessment variant.
type AssessmentCore struct {
	Severity   Severity  `json:"severity"`
	Imminence  Imminence `json:"imminence"`
	Confidence float64   `json:"confidence"`
	// RiskFeatures are the concrete features the judges observed
	// (e.g. "hopelessness", "passive_ideation").
	RiskFeatures []string `json:"risk_features"`
	RiskTypes    []string `json:"risk_types,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
}

func (c AssessmentCore) validate() error {
	if !c.Severity.valid() {
		return badField("severity", c.Severity)
	}
	if !c.Imminence.valid() {
		return badField("imminence", c.Imminence)
	}
	return checkConfidence("confidence", c.Confidence)
}

// DomainAssessment is the tagged union over the four assessment variants.
// The concrete type is one of SelfAssessment, OthersAssessment,
// DependentAtRiskAssessment or VictimisationAssessment; switch on the
// concrete type (or on Domain()) to consume it:
//
//	for _, d := range resp.Domains {
//		switch a := d.(type) {
//		case nope.SelfAssessment:
//			fmt.Println("self risk:", a.Severity, a.Subtype)
//		case nope.OthersAssessment:
//			fmt.Println("risk to others:", a.Severity)
//		case nope.DependentAtRiskAssessment:
//			fmt.Println("dependent at risk:", a.Subtype)
//		case nope.VictimisationAssessment:
//			fmt.Println("victimisation:", a.Severity)
//		}
//	}
type DomainAssessment interface {
	// Domain returns the discriminant value for this variant.
	Domain() RiskDomain
	// Core returns the fields shared by all variants.
	Core() AssessmentCore

	validate() error
}

// SelfAssessment is the assessment of risk the speaker poses to themselves.
type SelfAssessment struct {
	AssessmentCore
	Subtype SelfSubtype `json:"self_subtype"`
}

// Domain returns DomainSelf.
func (SelfAssessment) Domain() RiskDomain { return DomainSelf }

// Core returns the fields shared by all variants.
func (a SelfAssessment) Core() AssessmentCore { return a.AssessmentCore }

func (a SelfAssessment) validate() error {
	if err := a.AssessmentCore.validate(); err != nil {
		return err
	}
	if !a.Subtype.valid() {
		return badField("self_subtype", a.Subtype)
	}
	return nil
}

// MarshalJSON includes the domain discriminant.
func (a SelfAssessment) MarshalJSON() ([]byte, error) {
	type alias SelfAssessment
	return json.Marshal(struct {
		Domain RiskDomain `json:"domain"`
		alias
	}{DomainSelf, alias(a)})
}

// OthersAssessment is the assessment of risk the speaker poses to others.
type OthersAssessment struct {
	AssessmentCore
}

// Domain returns DomainOthers.
func (OthersAssessment) Domain() RiskDomain { return DomainOthers }

// Core returns the fields shared by all variants.
func (a OthersAssessment) Core() AssessmentCore { return a.AssessmentCore }

func (a OthersAssessment) validate() error { return a.AssessmentCore.validate() }

// MarshalJSON includes the domain discriminant.
func (a OthersAssessment) MarshalJSON() ([]byte, error) {
	type alias OthersAssessment
	return json.Marshal(struct {
		Domain RiskDomain `json:"domain"`
		alias
	}{DomainOthers, alias(a)})
}

// DependentAtRiskAssessment is the assessment of risk to a dependent in the
// speaker's care.
type DependentAtRiskAssessment struct {
	AssessmentCore
	Subtype DependentSubtype `json:"dependent_subtype"`
}

// Domain returns DomainDependentAtRisk.
func (DependentAtRiskAssessment) Domain() RiskDomain { return DomainDependentAtRisk }

// Core returns the fields shared by all variants.
func (a DependentAtRiskAssessment) Core() AssessmentCore { return a.AssessmentCore }

func (a DependentAtRiskAssessment) validate() error {
	if err := a.AssessmentCore.validate(); err != nil {
		return err
	}
	if !a.Subtype.valid() {
		return badField("dependent_subtype", a.Subtype)
	}
	return nil
}

// MarshalJSON includes the domain discriminant.
func (a DependentAtRiskAssessment) MarshalJSON() ([]byte, error) {
	type alias DependentAtRiskAssessment
	return json.Marshal(struct {
		Domain RiskDomain `json:"domain"`
		alias
	}{DomainDependentAtRisk, alias(a)})
}

// VictimisationAssessment is the assessment of harm the speaker is
// experiencing at the hands of others. Subtype is optional; it is empty when
// the judges could not narrow the pattern.
type VictimisationAssessment struct {
	AssessmentCore
	Subtype VictimisationSubtype `json:"victimisation_subtype,omitempty"`
}

// Domain returns DomainVictimisation.
func (VictimisationAssessment) Domain() RiskDomain { return DomainVictimisation }

// Core returns the fields shared by all variants.
func (a VictimisationAssessment) Core() AssessmentCore { return a.AssessmentCore }

func (a VictimisationAssessment) validate() error {
	if err := a.AssessmentCore.validate(); err != nil {
		return err
	}
	if a.Subtype != "" && !a.Subtype.valid() {
		return badField("victimisation_subtype", a.Subtype)
	}
	return nil
}

// MarshalJSON includes the domain discriminant.
func (a VictimisationAssessment) MarshalJSON() ([]byte, error) {
	type alias VictimisationAssessment
	return json.Marshal(struct {
		Domain RiskDomain `json:"domain"`
		alias
	}{DomainVictimisation, alias(a)})
}

// DomainAssessments is a list of polymorphic domain assessments. It
// implements json.Unmarshaler to dispatch each element on its domain
// discriminant.
type DomainAssessments []DomainAssessment

// UnmarshalJSON decodes each element into the variant selected by its
// domain field. An unrecognized discriminant is a SchemaError naming the
// domain field and the offending value.
func (d *DomainAssessments) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &SchemaError{Field: "domains", Err: err}
	}

	out := make(DomainAssessments, 0, len(raw))
	for _, item := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return &SchemaError{Field: "domains", Err: err}
		}
		var tag struct {
			Domain RiskDomain `json:"domain"`
		}
		if err := json.Unmarshal(item, &tag); err != nil {
			return &SchemaError{Field: "domain", Err: err}
		}

		required := []string{"severity", "imminence", "confidence", "risk_features"}
		var (
			assessment DomainAssessment
			err        error
		)
		switch tag.Domain {
		case DomainSelf:
			required = append(required, "self_subtype")
			var v SelfAssessment
			err = json.Unmarshal(item, &v)
			assessment = v
		case DomainOthers:
			var v OthersAssessment
			err = json.Unmarshal(item, &v)
			assessment = v
		case DomainDependentAtRisk:
			required = append(required, "dependent_subtype")
			var v DependentAtRiskAssessment
			err = json.Unmarshal(item, &v)
			assessment = v
		case DomainVictimisation:
			var v VictimisationAssessment
			err = json.Unmarshal(item, &v)
			assessment = v
		default:
			return badField("domain", tag.Domain)
		}
		if err != nil {
			return &SchemaError{Field: "domains", Err: err}
		}
		if err := requireKeys(fields, required...); err != nil {
			return err
		}
		out = append(out, assessment)
	}

	*d = out
	return nil
}

func (d DomainAssessments) validate() error {
	for _, a := range d {
		if err := a.validate(); err != nil {
			return err
		}
	}
	return nil
}

// GlobalAssessment is the overall summary across all risk domains.
type GlobalAssessment struct {
	OverallSeverity  Severity  `json:"overall_severity"`
	OverallImminence Imminence `json:"overall_imminence"`
	PrimaryConcerns  []string  `json:"primary_concerns"`
	Language         string    `json:"language,omitempty"`
	Locale           string    `json:"locale,omitempty"`
}

func (g *GlobalAssessment) validate() error {
	if !g.OverallSeverity.valid() {
		return badField("overall_severity", g.OverallSeverity)
	}
	if !g.OverallImminence.valid() {
		return badField("overall_imminence", g.OverallImminence)
	}
	return nil
}

// IPVRiskLevel grades intimate partner violence risk.
type IPVRiskLevel string

const (
	IPVRiskStandard IPVRiskLevel = "standard"
	IPVRiskElevated IPVRiskLevel = "elevated"
	IPVRiskSevere   IPVRiskLevel = "severe"
	IPVRiskExtreme  IPVRiskLevel = "extreme"
)

func (l IPVRiskLevel) valid() bool {
	switch l {
	case IPVRiskStandard, IPVRiskElevated, IPVRiskSevere, IPVRiskExtreme:
		return true
	}
	return false
}

// SafeguardingUrgency grades how quickly a safeguarding referral should
// happen.
type SafeguardingUrgency string

const (
	UrgencyRoutine   SafeguardingUrgency = "routine"
	UrgencyPrompt    SafeguardingUrgency = "prompt"
	UrgencyUrgent    SafeguardingUrgency = "urgent"
	UrgencyEmergency SafeguardingUrgency = "emergency"
)

func (u SafeguardingUrgency) valid() bool {
	switch u {
	case UrgencyRoutine, UrgencyPrompt, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

// ThirdPartyThreat indicates a threat against an identifiable third party.
type ThirdPartyThreat struct {
	Present            bool           `json:"present"`
	IdentifiableVictim bool           `json:"identifiable_victim"`
	Confidence         float64        `json:"confidence"`
	Rationale          string         `json:"rationale"`
	EvidenceGrade      *EvidenceGrade `json:"evidence_grade,omitempty"`
}

// IntimatePartnerViolence is the IPV risk indicator.
type IntimatePartnerViolence struct {
	RiskLevel            IPVRiskLevel   `json:"risk_level"`
	Confidence           float64        `json:"confidence"`
	StrangulationHistory *bool          `json:"strangulation_history,omitempty"`
	EscalationPattern    *bool          `json:"escalation_pattern,omitempty"`
	EvidenceGrade        *EvidenceGrade `json:"evidence_grade,omitempty"`
}

// ChildSafeguarding indicates child safeguarding urgency.
type ChildSafeguarding struct {
	Urgency         SafeguardingUrgency `json:"urgency"`
	Confidence      float64             `json:"confidence"`
	BasicNeedsUnmet *bool               `json:"basic_needs_unmet,omitempty"`
	ImmediateDanger *bool               `json:"immediate_danger,omitempty"`
	EvidenceGrade   *EvidenceGrade      `json:"evidence_grade,omitempty"`
}

// VulnerableAdultSafeguarding indicates vulnerable-adult safeguarding
// urgency.
type VulnerableAdultSafeguarding struct {
	Urgency       SafeguardingUrgency `json:"urgency"`
	Confidence    float64             `json:"confidence"`
	EvidenceGrade *EvidenceGrade      `json:"evidence_grade,omitempty"`
}

// AnimalCrueltyIndicator indicates signs of animal cruelty.
type AnimalCrueltyIndicator struct {
	Present       bool           `json:"present"`
	Confidence    float64        `json:"confidence"`
	EvidenceGrade *EvidenceGrade `json:"evidence_grade,omitempty"`
}

// LegalFlags carries the legal/clinical indicators, each independently
// optional, each with its own confidence and evidence grade.
type LegalFlags struct {
	ThirdPartyThreat            *ThirdPartyThreat            `json:"third_party_threat,omitempty"`
	IntimatePartnerViolence     *IntimatePartnerViolence     `json:"intimate_partner_violence,omitempty"`
	ChildSafeguarding           *ChildSafeguarding           `json:"child_safeguarding,omitempty"`
	VulnerableAdultSafeguarding *VulnerableAdultSafeguarding `json:"vulnerable_adult_safeguarding,omitempty"`
	AnimalCrueltyIndicator      *AnimalCrueltyIndicator      `json:"animal_cruelty_indicator,omitempty"`
}

func checkEvidenceGrade(field string, g *EvidenceGrade) error {
	if g != nil && !g.valid() {
		return badField(field, *g)
	}
	return nil
}

func (f *LegalFlags) validate() error {
	if t := f.ThirdPartyThreat; t != nil {
		if err := checkConfidence("confidence", t.Confidence); err != nil {
			return err
		}
		if err := checkEvidenceGrade("evidence_grade", t.EvidenceGrade); err != nil {
			return err
		}
	}
	if v := f.IntimatePartnerViolence; v != nil {
		if !v.RiskLevel.valid() {
			return badField("risk_level", v.RiskLevel)
		}
		if err := checkConfidence("confidence", v.Confidence); err != nil {
			return err
		}
		if err := checkEvidenceGrade("evidence_grade", v.EvidenceGrade); err != nil {
			return err
		}
	}
	if c := f.ChildSafeguarding; c != nil {
		if !c.Urgency.valid() {
			return badField("urgency", c.Urgency)
		}
		if err := checkConfidence("confidence", c.Confidence); err != nil {
			return err
		}
		if err := checkEvidenceGrade("evidence_grade", c.EvidenceGrade); err != nil {
			return err
		}
	}
	if a := f.VulnerableAdultSafeguarding; a != nil {
		if !a.Urgency.valid() {
			return badField("urgency", a.Urgency)
		}
		if err := checkConfidence("confidence", a.Confidence); err != nil {
			return err
		}
		if err := checkEvidenceGrade("evidence_grade", a.EvidenceGrade); err != nil {
			return err
		}
	}
	if a := f.AnimalCrueltyIndicator; a != nil {
		if err := checkConfidence("confidence", a.Confidence); err != nil {
			return err
		}
		if err := checkEvidenceGrade("evidence_grade", a.EvidenceGrade); err != nil {
			return err
		}
	}
	return nil
}

// PresentationModifiers are cross-cutting clinical features describing how
// the risk manifests rather than which domain it falls in.
type PresentationModifiers struct {
	PsychoticFeatures   *bool `json:"psychotic_features,omitempty"`
	SubstanceInvolved   *bool `json:"substance_involved,omitempty"`
	CognitiveImpairment *bool `json:"cognitive_impairment,omitempty"`
	PersonalityFeatures *bool `json:"personality_features,omitempty"`
	AcuteDecompensation *bool `json:"acute_decompensation,omitempty"`
	SelfNeglectSevere   *bool `json:"self_neglect_severe,omitempty"`
}

// SafeguardingFlags are legal/reporting markers.
type SafeguardingFlags struct {
	ChildAtRisk                *bool `json:"child_at_risk,omitempty"`
	AdultAtRisk                *bool `json:"adult_at_risk,omitempty"`
	DutyToWarnOthers           *bool `json:"duty_to_warn_others,omitempty"`
	MandatoryReportingPossible *bool `json:"mandatory_reporting_possible,omitempty"`
}

// FactorStrength grades how strong the observed protective factors are.
type FactorStrength string

const (
	FactorStrengthWeak     FactorStrength = "weak"
	FactorStrengthModerate FactorStrength = "moderate"
	FactorStrengthStrong   FactorStrength = "strong"
)

func (s FactorStrength) valid() bool {
	switch s {
	case FactorStrengthWeak, FactorStrengthModerate, FactorStrengthStrong:
		return true
	}
	return false
}

// ProtectiveFactorsInfo lists evidence-based strengths that reduce risk.
type ProtectiveFactorsInfo struct {
	ProtectiveFactors        []string        `json:"protective_factors,omitempty"`
	ProtectiveFactorStrength *FactorStrength `json:"protective_factor_strength,omitempty"`
}

func (p *ProtectiveFactorsInfo) validate() error {
	if p.ProtectiveFactorStrength != nil && !p.ProtectiveFactorStrength.valid() {
		return badField("protective_factor_strength", *p.ProtectiveFactorStrength)
	}
	return nil
}

// CrisisResourceType is the contact modality of a crisis resource.
type CrisisResourceType string

const (
	ResourceEmergencyNumber CrisisResourceType = "emergency_number"
	ResourceCrisisLine      CrisisResourceType = "crisis_line"
	ResourceTextLine        CrisisResourceType = "text_line"
	ResourceChatService     CrisisResourceType = "chat_service"
	ResourceSupportService  CrisisResourceType = "support_service"
)

func (t CrisisResourceType) valid() bool {
	switch t {
	case ResourceEmergencyNumber, ResourceCrisisLine, ResourceTextLine,
		ResourceChatService, ResourceSupportService:
		return true
	}
	return false
}

// CrisisResourceKind is the organizational kind of a crisis resource.
type CrisisResourceKind string

const (
	ResourceKindHelpline        CrisisResourceKind = "helpline"
	ResourceKindReportingPortal CrisisResourceKind = "reporting_portal"
	ResourceKindDirectory       CrisisResourceKind = "directory"
	ResourceKindSelfHelpSite    CrisisResourceKind = "self_help_site"
)

func (k CrisisResourceKind) valid() bool {
	switch k {
	case ResourceKindHelpline, ResourceKindReportingPortal,
		ResourceKindDirectory, ResourceKindSelfHelpSite:
		return true
	}
	return false
}

// CrisisResourceTier is the priority tier used to order resources.
type CrisisResourceTier string

const (
	TierPrimaryNationalCrisis    CrisisResourceTier = "primary_national_crisis"
	TierSecondaryNationalCrisis  CrisisResourceTier = "secondary_national_crisis"
	TierSpecialistIssueCrisis    CrisisResourceTier = "specialist_issue_crisis"
	TierPopulationSpecificCrisis CrisisResourceTier = "population_specific_crisis"
	TierSupportInfoAndAdvocacy   CrisisResourceTier = "support_info_and_advocacy"
	TierSupportDirectoryOrTool   CrisisResourceTier = "support_directory_or_tool"
	TierEmergencyServices        CrisisResourceTier = "emergency_services"
)

func (t CrisisResourceTier) valid() bool {
	switch t {
	case TierPrimaryNationalCrisis, TierSecondaryNationalCrisis,
		TierSpecialistIssueCrisis, TierPopulationSpecificCrisis,
		TierSupportInfoAndAdvocacy, TierSupportDirectoryOrTool,
		TierEmergencyServices:
		return true
	}
	return false
}

// ResourceSource is where a crisis resource was retrieved from.
type ResourceSource string

const (
	ResourceSourceDatabase  ResourceSource = "database"
	ResourceSourceWebSearch ResourceSource = "web_search"
)

func (s ResourceSource) valid() bool {
	switch s {
	case ResourceSourceDatabase, ResourceSourceWebSearch:
		return true
	}
	return false
}

// CrisisResource is a helpline, text line or other support service matched
// to the user's region. Contact fields are optional since resource types
// vary.
type CrisisResource struct {
	Type CrisisResourceType `json:"type"`
	Name string             `json:"name"`
	// NameLocal is the native-script name (e.g. いのちの電話) for
	// non-English resources.
	NameLocal        string             `json:"name_local,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	TextInstructions string             `json:"text_instructions,omitempty"`
	ChatURL          string             `json:"chat_url,omitempty"`
	WhatsAppURL      string             `json:"whatsapp_url,omitempty"`
	WebsiteURL       string             `json:"website_url,omitempty"`
	Availability     string             `json:"availability,omitempty"`
	Is247            *bool              `json:"is_24_7,omitempty"`
	Languages        []string           `json:"languages,omitempty"`
	Description      string             `json:"description,omitempty"`
	ResourceKind     CrisisResourceKind `json:"resource_kind,omitempty"`
	ServiceScope     []string           `json:"service_scope,omitempty"`
	PopulationServed []string           `json:"population_served,omitempty"`
	PriorityTier     CrisisResourceTier `json:"priority_tier,omitempty"`
	Source           ResourceSource     `json:"source,omitempty"`
}

func (r *CrisisResource) validate() error {
	if !r.Type.valid() {
		return badField("type", r.Type)
	}
	if r.Name == "" {
		return missingField("name")
	}
	if r.ResourceKind != "" && !r.ResourceKind.valid() {
		return badField("resource_kind", r.ResourceKind)
	}
	if r.PriorityTier != "" && !r.PriorityTier.valid() {
		return badField("priority_tier", r.PriorityTier)
	}
	if r.Source != "" && !r.Source.valid() {
		return badField("source", r.Source)
	}
	return nil
}

// ReplySource is how the recommended reply was produced.
type ReplySource string

const (
	ReplySourceTemplate              ReplySource = "template"
	ReplySourceLLMGenerated          ReplySource = "llm_generated"
	ReplySourceLLMValidatedCandidate ReplySource = "llm_validated_candidate"
)

func (s ReplySource) valid() bool {
	switch s {
	case ReplySourceTemplate, ReplySourceLLMGenerated, ReplySourceLLMValidatedCandidate:
		return true
	}
	return false
}

// RecommendedReply is a safe assistant reply the caller can surface
// directly.
type RecommendedReply struct {
	Content string      `json:"content"`
	Source  ReplySource `json:"source"`
	Notes   string      `json:"notes,omitempty"`
}

func (r *RecommendedReply) validate() error {
	if r.Content == "" {
		return missingField("content")
	}
	if !r.Source.valid() {
		return badField("source", r.Source)
	}
	return nil
}

// ResponseIssue names a problem detected in a proposed AI response.
type ResponseIssue string

const (
	// Critical issues.
	IssueMethodOrMeansDetail          ResponseIssue = "method_or_means_detail"
	IssueSuicideSelfHarmEncouragement ResponseIssue = "suicide_self_harm_encouragement"
	IssueCrisisSignalIgnored          ResponseIssue = "crisis_signal_ignored"
	IssueCrisisResourcesMissing       ResponseIssue = "crisis_resources_missing"
	IssueVictimBlaming                ResponseIssue = "victim_blaming"
	IssueHarmfulAdvice                ResponseIssue = "harmful_advice"
	// Serious issues.
	IssueDismissiveOfDistress     ResponseIssue = "dismissive_of_distress"
	IssueDisbeliefOfDisclosure    ResponseIssue = "disbelief_of_disclosure"
	IssueInappropriateProbing     ResponseIssue = "inappropriate_probing"
	IssueReinforcesHarmfulBeliefs ResponseIssue = "reinforces_harmful_beliefs"
	// Concerning issues.
	IssueScriptedRoboticTone     ResponseIssue = "scripted_robotic_tone"
	IssueOverwhelmingOrUnfocused ResponseIssue = "overwhelming_or_unfocused"
)

func (i ResponseIssue) valid() bool {
	switch i {
	case IssueMethodOrMeansDetail, IssueSuicideSelfHarmEncouragement,
		IssueCrisisSignalIgnored, IssueCrisisResourcesMissing,
		IssueVictimBlaming, IssueHarmfulAdvice, IssueDismissiveOfDistress,
		IssueDisbeliefOfDisclosure, IssueInappropriateProbing,
		IssueReinforcesHarmfulBeliefs, IssueScriptedRoboticTone,
		IssueOverwhelmingOrUnfocused:
		return true
	}
	return false
}

// ResponseRecommendation is what to do with the proposed response.
type ResponseRecommendation string

const (
	// RecommendationUse means the proposed response can be sent as is.
	RecommendationUse ResponseRecommendation = "use"
	// RecommendationAugment means the proposed response needs additions,
	// typically crisis resources.
	RecommendationAugment ResponseRecommendation = "augment"
	// RecommendationReplace means the proposed response should not be sent.
	RecommendationReplace ResponseRecommendation = "replace"
)

func (r ResponseRecommendation) valid() bool {
	switch r {
	case RecommendationUse, RecommendationAugment, RecommendationReplace:
		return true
	}
	return false
}

// ProposedResponseEvaluation is the verdict on the proposed_response the
// caller supplied with the request.
type ProposedResponseEvaluation struct {
	// Appropriate reports whether the proposed response fits the
	// conversation context.
	Appropriate bool `json:"appropriate"`
	// Issues lists the problems detected; empty when appropriate.
	Issues []ResponseIssue `json:"issues"`
	// Recommendation says what to do with the proposed response.
	Recommendation ResponseRecommendation `json:"recommendation"`
	Reasoning      string                 `json:"reasoning,omitempty"`
}

func (p *ProposedResponseEvaluation) validate() error {
	if !p.Recommendation.valid() {
		return badField("recommendation", p.Recommendation)
	}
	for _, issue := range p.Issues {
		if !issue.valid() {
			return badField("issues", issue)
		}
	}
	return nil
}

// CopingCategory is a high-level coping/support category.
type CopingCategory string

const (
	CopingSelfSoothing        CopingCategory = "self_soothing"
	CopingSocialSupport       CopingCategory = "social_support"
	CopingProfessionalSupport CopingCategory = "professional_support"
	CopingSafetyPlanning      CopingCategory = "safety_planning"
	CopingMeansSafety         CopingCategory = "means_safety"
)

func (c CopingCategory) valid() bool {
	switch c {
	case CopingSelfSoothing, CopingSocialSupport, CopingProfessionalSupport,
		CopingSafetyPlanning, CopingMeansSafety:
		return true
	}
	return false
}

// CopingRecommendation is a coping/support recommendation.
type CopingRecommendation struct {
	Category      CopingCategory `json:"category"`
	EvidenceGrade EvidenceGrade  `json:"evidence_grade"`
}

func (c *CopingRecommendation) validate() error {
	if !c.Category.valid() {
		return badField("category", c.Category)
	}
	if !c.EvidenceGrade.valid() {
		return badField("evidence_grade", c.EvidenceGrade)
	}
	return nil
}

// AccessLevel is the authentication level the server granted the request.
type AccessLevel string

const (
	AccessUnauthenticated AccessLevel = "unauthenticated"
	AccessAuthenticated   AccessLevel = "authenticated"
	AccessAdmin           AccessLevel = "admin"
)

func (a AccessLevel) valid() bool {
	switch a {
	case AccessUnauthenticated, AccessAuthenticated, AccessAdmin:
		return true
	}
	return false
}

// InputFormat is how the server interpreted the request input.
type InputFormat string

const (
	InputStructured InputFormat = "structured"
	InputTextBlob   InputFormat = "text_blob"
)

func (f InputFormat) valid() bool {
	switch f {
	case InputStructured, InputTextBlob:
		return true
	}
	return false
}

// ResponseMetadata describes how the server handled the request.
type ResponseMetadata struct {
	AccessLevel           AccessLevel `json:"access_level,omitempty"`
	IsAdmin               *bool       `json:"is_admin,omitempty"`
	MessagesTruncated     *bool       `json:"messages_truncated,omitempty"`
	MessagesOriginalCount *int        `json:"messages_original_count,omitempty"`
	MessagesKeptCount     *int        `json:"messages_kept_count,omitempty"`
	FeaturesAvailable     []string    `json:"features_available,omitempty"`
	InputFormat           InputFormat `json:"input_format,omitempty"`
	// APIVersion is the API version that served the request. The service
	// currently only speaks "v1".
	APIVersion string `json:"api_version,omitempty"`
}

const apiVersionV1 = "v1"

func (m *ResponseMetadata) validate() error {
	if m.AccessLevel != "" && !m.AccessLevel.valid() {
		return badField("access_level", m.AccessLevel)
	}
	if m.InputFormat != "" && !m.InputFormat.valid() {
		return badField("input_format", m.InputFormat)
	}
	if m.APIVersion != "" && m.APIVersion != apiVersionV1 {
		return badField("api_version", m.APIVersion)
	}
	return nil
}

// EvaluateResponse is the full result of an evaluation.
type EvaluateResponse struct {
	// Domains holds the per-domain assessments. Empty when no risk was
	// detected in any domain.
	Domains DomainAssessments `json:"domains"`

	// Global is the overall summary across domains.
	Global GlobalAssessment `json:"global"`

	LegalFlags            *LegalFlags            `json:"legal_flags,omitempty"`
	PresentationModifiers *PresentationModifiers `json:"presentation_modifiers,omitempty"`
	SafeguardingFlags     *SafeguardingFlags     `json:"safeguarding_flags,omitempty"`
	ProtectiveFactorsInfo *ProtectiveFactorsInfo `json:"protective_factors_info,omitempty"`

	// Confidence is the overall confidence in the assessment, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Agreement is the judge agreement when multiple judges ran.
	Agreement *float64 `json:"agreement,omitempty"`

	// CrisisResources are support services for the user's region.
	CrisisResources []CrisisResource `json:"crisis_resources"`

	// WidgetURL is a pre-built embeddable crisis-resource widget. Present
	// only when overall severity is above none.
	WidgetURL string `json:"widget_url,omitempty"`

	RecommendedReply           *RecommendedReply           `json:"recommended_reply,omitempty"`
	ProposedResponseEvaluation *ProposedResponseEvaluation `json:"proposed_response_evaluation,omitempty"`
	CopingRecommendations      []CopingRecommendation      `json:"coping_recommendations,omitempty"`
	Metadata                   *ResponseMetadata           `json:"metadata,omitempty"`
}

func (r *EvaluateResponse) validate() error {
	if err := r.Domains.validate(); err != nil {
		return err
	}
	if err := r.Global.validate(); err != nil {
		return err
	}
	if err := checkConfidence("confidence", r.Confidence); err != nil {
		return err
	}
	if r.Agreement != nil {
		if err := checkConfidence("agreement", *r.Agreement); err != nil {
			return err
		}
	}
	if r.LegalFlags != nil {
		if err := r.LegalFlags.validate(); err != nil {
			return err
		}
	}
	if r.ProtectiveFactorsInfo != nil {
		if err := r.ProtectiveFactorsInfo.validate(); err != nil {
			return err
		}
	}
	for i := range r.CrisisResources {
		if err := r.CrisisResources[i].validate(); err != nil {
			return err
		}
	}
	if r.RecommendedReply != nil {
		if err := r.RecommendedReply.validate(); err != nil {
			return err
		}
	}
	if r.ProposedResponseEvaluation != nil {
		if err := r.ProposedResponseEvaluation.validate(); err != nil {
			return err
		}
	}
	for i := range r.CopingRecommendations {
		if err := r.CopingRecommendations[i].validate(); err != nil {
			return err
		}
	}
	if r.Metadata != nil {
		if err := r.Metadata.validate(); err != nil {
			return err
		}
	}
	return nil
}

// decodeEvaluateResponse parses and validates a 2xx response body. Decoding
// is pure and deterministic. Unrecognized keys from the server are ignored
// for forward compatibility; missing required fields and recognized fields
// with out-of-range or out-of-enumeration values are rejected with a
// SchemaError naming the field.
func decodeEvaluateResponse(body []byte) (*EvaluateResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &SchemaError{Err: err}
	}
	if err := requireKeys(fields, "domains", "global", "confidence", "crisis_resources"); err != nil {
		return nil, err
	}

	var resp EvaluateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr
		}
		return nil, &SchemaError{Err: err}
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func badField(field string, value any) *SchemaError {
	return &SchemaError{Field: field, Value: fmt.Sprint(value)}
}

var errRequired = errors.New("required field is missing")

func missingField(field string) *SchemaError {
	return &SchemaError{Field: field, Err: errRequired}
}

// requireKeys checks that every named key is present in the raw JSON object.
// Presence is what matters; a null or zero value is left to the field's own
// validation.
func requireKeys(fields map[string]json.RawMessage, keys ...string) error {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return missingField(k)
		}
	}
	return nil
}

func checkConfidence(field string, v float64) error {
	if v < 0 || v > 1 {
		return badField(field, v)
	}
	return nil
}
