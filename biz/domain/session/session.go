package session

import (
	"time"

	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// CallSession 一次被监护的通话
// 活跃期内由Store独占持有, 结束后移入只读的历史集合
type CallSession struct {
	Id              string                `json:"id"`
	ElderId         string                `json:"elder_id"`
	RoomName        string                `json:"room_name"`
	Status          string                `json:"status"`
	StartedAt       time.Time             `json:"started_at"`
	EndedAt         *time.Time            `json:"ended_at,omitempty"`
	DurationSeconds int64                 `json:"duration_seconds"`
	RecordingPath   string                `json:"recording_path,omitempty"`
	Transcript      []*TranscriptLine     `json:"transcript"`
	Wellbeing       *WellbeingAssessment  `json:"wellbeing,omitempty"`
	Concerns        []*Concern            `json:"concerns"`
	ProfileFacts    []*ProfileFact        `json:"profile_facts"`
	Actions         []*EscalationAction   `json:"actions"`
}

// TranscriptLine 一条转写文本, 追加后不可变
type TranscriptLine struct {
	Id          string    `json:"id"`
	Speaker     string    `json:"speaker"`
	SpeakerName string    `json:"speaker_name"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// EmotionalState 情绪维度
type EmotionalState struct {
	CurrentMood     string `json:"current_mood"`
	LonelinessLevel string `json:"loneliness_level"`
	GriefIndicators bool   `json:"grief_indicators"`
	FearIndicators  bool   `json:"fear_indicators"`
	HopeIndicators  bool   `json:"hope_indicators"`
	Notes           string `json:"notes"`
}

// MentalState 心理维度
type MentalState struct {
	DepressionIndicators []string `json:"depression_indicators"`
	AnxietyIndicators    []string `json:"anxiety_indicators"`
	PurposeLevel         string   `json:"purpose_level"`
	PatternChange        bool     `json:"pattern_change"`
	Notes                string   `json:"notes"`
}

// SocialState 社交维度
type SocialState struct {
	FamilyContactRecency   string `json:"family_contact_recency"`
	IsolationLevel         string `json:"isolation_level"`
	CommunityEngagement    string `json:"community_engagement"`
	SupportNetworkStrength string `json:"support_network_strength"`
	Notes                  string `json:"notes"`
}

// PhysicalState 身体维度
type PhysicalState struct {
	PainReported      bool   `json:"pain_reported"`
	PainDetails       string `json:"pain_details,omitempty"`
	MobilityConcerns  bool   `json:"mobility_concerns"`
	SleepIssues       bool   `json:"sleep_issues"`
	NutritionConcerns bool   `json:"nutrition_concerns"`
	MedicationIssues  bool   `json:"medication_issues"`
	EnergyLevel       string `json:"energy_level"`
	Notes             string `json:"notes"`
}

// CognitiveState 认知维度
type CognitiveState struct {
	MemoryConcerns    bool   `json:"memory_concerns"`
	OrientationIssues bool   `json:"orientation_issues"`
	BaselineChange    bool   `json:"baseline_change"`
	Notes             string `json:"notes"`
}

// WellbeingAssessment 五维健康快照, 每次更新整体替换而非合并
// 总体关注级别: none < low < moderate < high < critical
type WellbeingAssessment struct {
	Emotional           EmotionalState `json:"emotional"`
	Mental              MentalState    `json:"mental"`
	Social              SocialState    `json:"social"`
	Physical            PhysicalState  `json:"physical"`
	Cognitive           CognitiveState `json:"cognitive"`
	OverallConcernLevel string         `json:"overall_concern_level"`
}

// Concern 分析器检出的风险信号
// 只有Resolved和ActionsTriggered允许由转介模块回写, 其余字段不可变
type Concern struct {
	Id               string    `json:"id"`
	Dimension        string    `json:"dimension"`
	Type             string    `json:"type"`
	Severity         string    `json:"severity"`
	Description      string    `json:"description"`
	Quote            string    `json:"quote,omitempty"`
	DetectedAt       time.Time `json:"detected_at"`
	ActionRequired   bool      `json:"action_required"`
	Resolved         bool      `json:"resolved"`
	ActionsTriggered []string  `json:"actions_triggered"`
}

// ProfileFact 通话中学到的新信息
type ProfileFact struct {
	Id           string    `json:"id"`
	Fact         string    `json:"fact"`
	Category     string    `json:"category"`
	Context      string    `json:"context,omitempty"`
	LearnedAt    time.Time `json:"learned_at"`
	SourceCallId string    `json:"source_call_id,omitempty"`
}

// EscalationAction 对村庄成员的一次转介外呼
// 状态机: pending → calling → ringing → {connected, failed, no_answer}
type EscalationAction struct {
	Id          string                 `json:"id"`
	CallId      string                 `json:"call_id"`
	Recipient   *village.VillageMember `json:"recipient"`
	ConcernId   string                 `json:"concern_id,omitempty"`
	ActionType  string                 `json:"action_type"`
	Reason      string                 `json:"reason"`
	Urgency     string                 `json:"urgency"`
	Status      string                 `json:"status"`
	Outcome     string                 `json:"outcome,omitempty"`
	InitiatedAt time.Time              `json:"initiated_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// Terminal 判断动作是否已到达终态
func (a *EscalationAction) Terminal() bool {
	switch a.Status {
	case consts.ActionConnected, consts.ActionFailed, consts.ActionNoAnswer:
		return true
	}
	return false
}

// statusRank 通话状态的单调序, 只允许向更大的rank迁移
var statusRank = map[string]int{
	consts.CallRinging:    0,
	consts.CallInProgress: 1,
	consts.CallCompleted:  2,
	consts.CallFailed:     2,
	consts.CallNoAnswer:   2,
}

// clone 深拷贝一份会话快照, 读侧拿到的都是副本
func (s *CallSession) clone() *CallSession {
	cp := *s
	cp.Transcript = append([]*TranscriptLine(nil), s.Transcript...)
	cp.Concerns = make([]*Concern, 0, len(s.Concerns))
	for _, c := range s.Concerns {
		cc := *c
		cc.ActionsTriggered = append([]string(nil), c.ActionsTriggered...)
		cp.Concerns = append(cp.Concerns, &cc)
	}
	cp.ProfileFacts = append([]*ProfileFact(nil), s.ProfileFacts...)
	cp.Actions = make([]*EscalationAction, 0, len(s.Actions))
	for _, a := range s.Actions {
		ac := *a
		cp.Actions = append(cp.Actions, &ac)
	}
	if s.Wellbeing != nil {
		w := *s.Wellbeing
		cp.Wellbeing = &w
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}
