package session

import (
	"sync"
	"time"

	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// Store 活跃与历史通话会话的内存注册表, 会话状态的唯一事实来源
// 同一会话的并发修改通过per-id互斥串行化, 读侧返回快照
type Store struct {
	mu      sync.RWMutex
	active  map[string]*entry
	history map[string]*CallSession
}

type entry struct {
	mu sync.Mutex
	s  *CallSession
}

// NewStore 初始化注册表, 进程启动时创建一次
func NewStore() *Store {
	return &Store{
		active:  make(map[string]*entry),
		history: make(map[string]*CallSession),
	}
}

// Create 登记一个新会话, 初始状态ringing
// 同一id只允许存在一个活跃会话
func (st *Store) Create(s *CallSession) *CallSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s.Status == "" {
		s.Status = consts.CallRinging
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if e, ok := st.active[s.Id]; ok {
		// 不应该发生, 按编程错误处理
		log.Error("session already exists, id: ", s.Id)
		return e.s.clone()
	}
	st.active[s.Id] = &entry{s: s}
	return s.clone()
}

// Get 获取会话快照, 活跃和历史都可查
func (st *Store) Get(id string) (*CallSession, error) {
	st.mu.RLock()
	e, ok := st.active[id]
	h, hok := st.history[id]
	st.mu.RUnlock()
	if ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.s.clone(), nil
	}
	if hok {
		return h.clone(), nil
	}
	return nil, consts.ErrCallNotFound
}

// lookup 取活跃会话的entry
func (st *Store) lookup(id string) (*entry, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.active[id]
	if !ok {
		return nil, consts.ErrCallNotFound
	}
	return e, nil
}

// AppendTranscriptLine 追加一条转写, 并在同一把锁内执行交付回调
// 第一条转写会把ringing推进到in_progress, 迁移与否经回调参数给出;
// 广播和分析提交放进回调, 两条下游路径看到的顺序就和追加顺序严格一致,
// 并发的转写请求不会交叉
func (st *Store) AppendTranscriptLine(id string, line *TranscriptLine, deliver func(promoted bool)) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if line.Timestamp.IsZero() {
		line.Timestamp = time.Now()
	}
	e.s.Transcript = append(e.s.Transcript, line)
	promoted := false
	if e.s.Status == consts.CallRinging {
		e.s.Status = consts.CallInProgress
		promoted = true
	}
	if deliver != nil {
		deliver(promoted)
	}
	return nil
}

// SetStatus 显式推进通话状态, 如电话服务的回调信号
// 状态单调, 逆向迁移视为编程错误, 丢弃并记日志
func (st *Store) SetStatus(id, status string) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if statusRank[status] < statusRank[e.s.Status] {
		log.Error("illegal status transition, id: ", id, " ", e.s.Status, " -> ", status)
		return nil
	}
	e.s.Status = status
	return nil
}

// SetRecordingPath 回写录音文件路径
func (st *Store) SetRecordingPath(id, path string) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.RecordingPath = path
	return nil
}

// UpdateWellbeing 整体替换健康快照
func (st *Store) UpdateWellbeing(id string, w *WellbeingAssessment) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Wellbeing = w
	return nil
}

// AppendConcern 追加一条风险信号
func (st *Store) AppendConcern(id string, c *Concern) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Concerns = append(e.s.Concerns, c)
	return nil
}

// AppendProfileFact 追加一条新学到的信息
func (st *Store) AppendProfileFact(id string, f *ProfileFact) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.ProfileFacts = append(e.s.ProfileFacts, f)
	return nil
}

// AppendAction 追加一条转介动作
func (st *Store) AppendAction(id string, a *EscalationAction) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Actions = append(e.s.Actions, a)
	return nil
}

// UpdateActionStatus 推进转介动作的状态机, 由转介模块独占调用
func (st *Store) UpdateActionStatus(id, actionId, status, outcome string) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range e.s.Actions {
		if a.Id != actionId {
			continue
		}
		a.Status = status
		if outcome != "" {
			a.Outcome = outcome
		}
		if a.Terminal() && a.CompletedAt == nil {
			now := time.Now()
			a.CompletedAt = &now
		}
		return nil
	}
	return consts.ErrCallNotFound
}

// MarkConcernActioned 回写风险信号: 记录触发的动作, 接通后标记已处理
func (st *Store) MarkConcernActioned(id, concernId, actionId string, resolved bool) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.s.Concerns {
		if c.Id != concernId {
			continue
		}
		if actionId != "" {
			c.ActionsTriggered = append(c.ActionsTriggered, actionId)
		}
		if resolved {
			c.Resolved = true
		}
		return nil
	}
	return nil
}

// Complete 结束会话并移入历史
// 幂等: 对已结束的id再次调用原样返回历史记录, 因为结束信号可能来自
// 前端的主动挂断和电话服务回调两条路, 存在竞态
func (st *Store) Complete(id string) (*CallSession, error) {
	// 全程持有注册表锁, 两个并发的Complete只会有一个做迁移
	st.mu.Lock()
	defer st.mu.Unlock()
	if h, ok := st.history[id]; ok {
		return h.clone(), nil
	}
	e, ok := st.active[id]
	if !ok {
		return nil, consts.ErrCallNotFound
	}

	e.mu.Lock()
	now := time.Now()
	e.s.EndedAt = &now
	e.s.DurationSeconds = int64(now.Sub(e.s.StartedAt).Seconds())
	switch e.s.Status {
	case consts.CallInProgress:
		// completed只能从in_progress到达
		e.s.Status = consts.CallCompleted
	case consts.CallRinging:
		// 没人说过话就结束, 记为无人接听
		e.s.Status = consts.CallNoAnswer
	}
	s := e.s
	e.mu.Unlock()

	delete(st.active, id)
	st.history[id] = s
	return s.clone(), nil
}

// ListActive 列出活跃会话快照, 可按老人过滤
func (st *Store) ListActive(elderId string, limit int) []*CallSession {
	st.mu.RLock()
	entries := make([]*entry, 0, len(st.active))
	for _, e := range st.active {
		entries = append(entries, e)
	}
	st.mu.RUnlock()

	out := make([]*CallSession, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		s := e.s.clone()
		e.mu.Unlock()
		if elderId != "" && s.ElderId != elderId {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
