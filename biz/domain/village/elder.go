package village

import "sync"

// VillageMember 村庄名册里的一位响应者
// 对核心流程只读, 由档案方维护
type VillageMember struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Availability string `json:"availability,omitempty"`
	Available    bool   `json:"available"`
	Notes        string `json:"notes,omitempty"`
}

// WellbeingBaseline 老人的健康基线, 作为分析提示词的背景
type WellbeingBaseline struct {
	TypicalMood         string   `json:"typical_mood"`
	SocialFrequency     string   `json:"social_frequency"`
	CognitiveBaseline   string   `json:"cognitive_baseline"`
	PhysicalLimitations []string `json:"physical_limitations"`
	KnownConcerns       []string `json:"known_concerns"`
}

// Elder 被关怀的老人档案
type Elder struct {
	Id       string             `json:"id"`
	Name     string             `json:"name"`
	Age      int                `json:"age"`
	Phone    string             `json:"phone"`
	Address  string             `json:"address,omitempty"`
	Village  []*VillageMember   `json:"village"`
	Baseline *WellbeingBaseline `json:"wellbeing_baseline,omitempty"`
}

// Registry 老人档案的内存注册表
// 档案数据归属外部系统, 这里只保留演示档案和少量缓存
type Registry struct {
	mu     sync.RWMutex
	elders map[string]*Elder
}

// NewRegistry 创建注册表并预置演示档案
func NewRegistry() *Registry {
	r := &Registry{elders: make(map[string]*Elder)}
	m := Margaret()
	r.elders[m.Id] = m
	return r
}

// Put 写入一份档案
func (r *Registry) Put(e *Elder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elders[e.Id] = e
}

// Get 查找档案, 未命中时回落到演示档案, 与原型行为一致
func (r *Registry) Get(id string) *Elder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.elders[id]; ok {
		return e
	}
	return Margaret()
}

// Margaret 演示档案
func Margaret() *Elder {
	return &Elder{
		Id:      "margaret-chen-001",
		Name:    "Margaret Chen",
		Age:     78,
		Phone:   "+14125550142",
		Address: "412 Oak Street, Pittsburgh, PA 15213",
		Village: []*VillageMember{
			{
				Id:           "vm-001",
				Name:         "Susan Chen",
				Role:         "family",
				Relationship: "daughter",
				Phone:        "+12155550198",
				Availability: "evenings",
				Available:    true,
				Notes:        "Works full-time, feels guilty about not calling more",
			},
			{
				Id:           "vm-002",
				Name:         "Tom Bradley",
				Role:         "neighbor",
				Relationship: "next-door neighbor",
				Phone:        "+14125550156",
				Availability: "afternoons",
				Available:    true,
				Notes:        "Retired teacher, brings Margaret's mail often",
			},
			{
				Id:           "vm-003",
				Name:         "Dr. Maria Martinez",
				Role:         "medical",
				Relationship: "primary care physician",
				Phone:        "+14125550200",
				Availability: "office hours",
				Available:    true,
				Notes:        "Has been Margaret's doctor for 15 years",
			},
			{
				Id:           "vm-004",
				Name:         "Jane Thompson",
				Role:         "volunteer",
				Relationship: "companion volunteer",
				Phone:        "+14125550177",
				Availability: "Tuesdays and Thursdays",
				Available:    true,
				Notes:        "Also loves card games, matched based on interests",
			},
		},
		Baseline: &WellbeingBaseline{
			TypicalMood:         "Generally positive, occasionally melancholy about Harold",
			SocialFrequency:     "Talks to Susan weekly, sees Tom a few times a week",
			CognitiveBaseline:   "Sharp, good memory, occasionally forgets small things",
			PhysicalLimitations: []string{"Knee pain limits long walks", "Gets tired easily"},
			KnownConcerns:       []string{"Tends to isolate when feeling down", "Doesn't drink enough water"},
		},
	}
}
