package analyze

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/xh-polaris/village-senior/biz/domain/session"
)

// Insight 一轮分析解析后的结果
type Insight struct {
	Wellbeing *session.WellbeingAssessment
	Concerns  []*session.Concern
	Facts     []*session.ProfileFact
	Actions   []*SuggestedAction
}

// SuggestedAction 模型建议的转介动作
type SuggestedAction struct {
	ActionType       string `json:"action_type"`
	Urgency          string `json:"urgency"`
	Reason           string `json:"reason"`
	SuggestedContact string `json:"suggested_contact"`
}

// rawAnalysis 模型响应的原始结构
type rawAnalysis struct {
	Wellbeing        json.RawMessage      `json:"wellbeing"`
	Concerns         []rawConcern         `json:"concerns"`
	ProfileUpdates   []rawProfileUpdate   `json:"profile_updates"`
	SuggestedActions []rawSuggestedAction `json:"suggested_actions"`
}

type rawConcern struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Quote          string `json:"quote"`
	ActionRequired bool   `json:"action_required"`
	Reasoning      string `json:"reasoning"`
}

type rawProfileUpdate struct {
	Category string `json:"category"`
	Fact     string `json:"fact"`
}

type rawSuggestedAction struct {
	ActionType       string `json:"action_type"`
	Urgency          string `json:"urgency"`
	Reason           string `json:"reason"`
	SuggestedContact string `json:"suggested_contact"`
}

// rawWellbeing 提示词约定的扁平健康字段
type rawWellbeing struct {
	Mood                   string   `json:"mood"`
	LonelinessLevel        string   `json:"loneliness_level"`
	GriefIndicators        bool     `json:"grief_indicators"`
	FearIndicators         bool     `json:"fear_indicators"`
	HopeIndicators         bool     `json:"hope_indicators"`
	EmotionalNotes         string   `json:"emotional_notes"`
	DepressionIndicators   []string `json:"depression_indicators"`
	AnxietyIndicators      []string `json:"anxiety_indicators"`
	PurposeLevel           string   `json:"purpose_level"`
	MentalPatternChange    bool     `json:"mental_pattern_change"`
	MentalNotes            string   `json:"mental_notes"`
	FamilyContactRecency   string   `json:"family_contact_recency"`
	IsolationLevel         string   `json:"isolation_level"`
	CommunityEngagement    string   `json:"community_engagement"`
	SupportNetworkStrength string   `json:"support_network_strength"`
	SocialNotes            string   `json:"social_notes"`
	PainReported           bool     `json:"pain_reported"`
	PainDetails            string   `json:"pain_details"`
	MobilityConcerns       bool     `json:"mobility_concerns"`
	SleepIssues            bool     `json:"sleep_issues"`
	NutritionConcerns      bool     `json:"nutrition_concerns"`
	MedicationIssues       bool     `json:"medication_issues"`
	EnergyLevel            string   `json:"energy_level"`
	PhysicalNotes          string   `json:"physical_notes"`
	MemoryConcerns         bool     `json:"memory_concerns"`
	OrientationIssues      bool     `json:"orientation_issues"`
	CognitiveBaselineChange bool    `json:"cognitive_baseline_change"`
	CognitiveNotes         string   `json:"cognitive_notes"`
	OverallConcernLevel    string   `json:"overall_concern_level"`
}

// parse 防御式解析模型输出
// 输出外层的markdown围栏先剥掉; 结构不合法时返回nil不返回错误,
// 当轮视为没有洞察, 流水线继续
func parse(text string) *Insight {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}

	in := &Insight{
		Wellbeing: parseWellbeing(raw.Wellbeing),
	}
	for _, c := range raw.Concerns {
		in.Concerns = append(in.Concerns, convertConcern(c))
	}
	for _, p := range raw.ProfileUpdates {
		in.Facts = append(in.Facts, &session.ProfileFact{
			Fact:     p.Fact,
			Category: defaultStr(p.Category, "general"),
		})
	}
	for _, a := range raw.SuggestedActions {
		in.Actions = append(in.Actions, &SuggestedAction{
			ActionType:       a.ActionType,
			Urgency:          defaultStr(a.Urgency, "routine"),
			Reason:           a.Reason,
			SuggestedContact: a.SuggestedContact,
		})
	}
	return in
}

// parseWellbeing 空的wellbeing段表示本轮没有健康快照
func parseWellbeing(data json.RawMessage) *session.WellbeingAssessment {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil
	}
	var w rawWellbeing
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil
	}
	return &session.WellbeingAssessment{
		Emotional: session.EmotionalState{
			CurrentMood:     defaultStr(w.Mood, "neutral"),
			LonelinessLevel: defaultStr(w.LonelinessLevel, "none"),
			GriefIndicators: w.GriefIndicators,
			FearIndicators:  w.FearIndicators,
			HopeIndicators:  w.HopeIndicators,
			Notes:           w.EmotionalNotes,
		},
		Mental: session.MentalState{
			DepressionIndicators: w.DepressionIndicators,
			AnxietyIndicators:    w.AnxietyIndicators,
			PurposeLevel:         defaultStr(w.PurposeLevel, "moderate"),
			PatternChange:        w.MentalPatternChange,
			Notes:                w.MentalNotes,
		},
		Social: session.SocialState{
			FamilyContactRecency:   defaultStr(w.FamilyContactRecency, "unknown"),
			IsolationLevel:         defaultStr(w.IsolationLevel, "none"),
			CommunityEngagement:    defaultStr(w.CommunityEngagement, "unknown"),
			SupportNetworkStrength: defaultStr(w.SupportNetworkStrength, "moderate"),
			Notes:                  w.SocialNotes,
		},
		Physical: session.PhysicalState{
			PainReported:      w.PainReported,
			PainDetails:       w.PainDetails,
			MobilityConcerns:  w.MobilityConcerns,
			SleepIssues:       w.SleepIssues,
			NutritionConcerns: w.NutritionConcerns,
			MedicationIssues:  w.MedicationIssues,
			EnergyLevel:       defaultStr(w.EnergyLevel, "good"),
			Notes:             w.PhysicalNotes,
		},
		Cognitive: session.CognitiveState{
			MemoryConcerns:    w.MemoryConcerns,
			OrientationIssues: w.OrientationIssues,
			BaselineChange:    w.CognitiveBaselineChange,
			Notes:             w.CognitiveNotes,
		},
		OverallConcernLevel: defaultStr(w.OverallConcernLevel, "none"),
	}
}

func convertConcern(c rawConcern) *session.Concern {
	return &session.Concern{
		Dimension:      defaultStr(c.Type, "general"),
		Type:           defaultStr(c.Type, "general"),
		Severity:       defaultStr(c.Severity, "medium"),
		Description:    c.Description,
		Quote:          c.Quote,
		ActionRequired: c.ActionRequired,
	}
}

func defaultStr(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
