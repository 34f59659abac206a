package analyze

import (
	"fmt"
	"strings"

	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
)

// buildPrompt 由老人基线和当前窗口拼出分析提示词
// 模型被要求只回纯JSON, 外层围栏在解析时再剥一次作为兜底
func buildPrompt(elder *village.Elder, window []*session.TranscriptLine) string {
	var sb strings.Builder
	for _, line := range window {
		sb.WriteString(strings.ToUpper(line.Speaker))
		sb.WriteString(": ")
		sb.WriteString(line.Text)
		sb.WriteString("\n")
	}

	baseline := "Unknown"
	if elder.Baseline != nil {
		baseline = elder.Baseline.TypicalMood
	}

	return fmt.Sprintf(`You are an AI assistant analyzing a wellness check-in call with an elderly person.

**Elder Information:**
- Name: %s
- Age: %d
- Baseline: %s

**Recent Conversation:**
%s
**Your Task:**
Analyze this conversation and provide a JSON response with the following structure:

{
  "wellbeing": {
    "mood": "description of current mood",
    "loneliness_level": "none|mild|moderate|high",
    "grief_indicators": true|false,
    "fear_indicators": true|false,
    "hope_indicators": true|false,
    "emotional_notes": "any emotional observations",
    "depression_indicators": ["specific observations"],
    "anxiety_indicators": ["specific observations"],
    "purpose_level": "strong|moderate|low|absent",
    "mental_pattern_change": true|false,
    "mental_notes": "any mental health observations",
    "family_contact_recency": "when they last spoke to family",
    "isolation_level": "none|mild|moderate|severe",
    "community_engagement": "description of social activities",
    "support_network_strength": "strong|moderate|weak",
    "social_notes": "any social observations",
    "pain_reported": true|false,
    "pain_details": "description if pain reported",
    "mobility_concerns": true|false,
    "sleep_issues": true|false,
    "nutrition_concerns": true|false,
    "medication_issues": true|false,
    "energy_level": "good|low|very_low",
    "physical_notes": "any physical observations",
    "memory_concerns": true|false,
    "orientation_issues": true|false,
    "cognitive_baseline_change": true|false,
    "cognitive_notes": "any cognitive observations",
    "overall_concern_level": "none|low|moderate|high|critical"
  },
  "concerns": [
    {
      "type": "physical|emotional|cognitive|social|safety",
      "severity": "low|medium|high|critical",
      "description": "what was said or observed",
      "quote": "the exact words that triggered this concern",
      "action_required": true|false,
      "reasoning": "why this is a concern"
    }
  ],
  "profile_updates": [
    {
      "category": "health|family|interests|routine|preferences",
      "fact": "new information learned"
    }
  ],
  "suggested_actions": [
    {
      "action_type": "call_family|call_neighbor|call_medical|call_volunteer",
      "urgency": "immediate|soon|routine",
      "reason": "why this action is needed",
      "suggested_contact": "which village member role"
    }
  ]
}

**Guidelines:**
- Be objective and evidence-based
- Flag concerns early but don't over-dramatize
- Consider the elder's baseline when assessing changes
- Only suggest actions when truly warranted
- Empty arrays are acceptable if nothing detected

Respond with ONLY valid JSON, no additional text.`, elder.Name, elder.Age, baseline, sb.String())
}
