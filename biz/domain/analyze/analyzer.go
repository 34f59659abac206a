package analyze

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/domain/escalate"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/util"
)

const (
	// windowSize 滚动窗口保留的转写条数
	windowSize = 10
	// minLines 冷启动抑制: 不足3条不触发分析, 太短的片段信号不可靠
	minLines = 3
)

// Analyzer 增量转写分析器
// 每个通话维护独立的滚动上下文; 同一通话同时至多一次模型调用在途,
// 在途期间新到的转写仍会进窗口, 由收尾时的补跑消化;
// 不同通话之间完全独立, 单个通话的卡顿不会拖慢别的通话
type Analyzer struct {
	// app 为nil时降级为"没有洞察", 转写摄入不受影响
	app        model.AnalyzeApp
	store      *session.Store
	hub        *hub.Hub
	dispatcher *escalate.Dispatcher
	timeout    time.Duration

	mu       sync.Mutex
	contexts map[string]*callContext
}

// callContext 单个通话的滚动上下文, 通话结束即销毁
type callContext struct {
	elder  *village.Elder
	window []*session.TranscriptLine
	// running 在途标记, 同一通话的单飞闸门
	running bool
	// dirty 在途期间有新转写到达, 本轮结束后需要补跑一轮
	dirty bool
}

func NewAnalyzer(app model.AnalyzeApp, store *session.Store, h *hub.Hub, d *escalate.Dispatcher, c *config.Analyze) *Analyzer {
	return &Analyzer{
		app:        app,
		store:      store,
		hub:        h,
		dispatcher: d,
		timeout:    time.Duration(c.TimeoutMs) * time.Millisecond,
		contexts:   make(map[string]*callContext),
	}
}

// Submit 提交一条新转写
// 只做上下文追加和触发判断, 不阻塞调用方; 分析在后台协程完成
func (a *Analyzer) Submit(callId string, elder *village.Elder, line *session.TranscriptLine) {
	a.mu.Lock()
	cc, ok := a.contexts[callId]
	if !ok {
		cc = &callContext{}
		a.contexts[callId] = cc
	}
	cc.elder = elder
	cc.window = append(cc.window, line)
	if len(cc.window) > windowSize {
		cc.window = cc.window[len(cc.window)-windowSize:]
	}
	if len(cc.window) < minLines {
		a.mu.Unlock()
		return
	}
	if cc.running {
		cc.dirty = true
		a.mu.Unlock()
		return
	}
	cc.running = true
	a.mu.Unlock()

	gopool.Go(func() {
		a.loop(callId, cc)
	})
}

// Destroy 通话结束时销毁上下文, 不做任何追溯分析
func (a *Analyzer) Destroy(callId string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.contexts, callId)
}

// loop 单飞主循环: 跑一轮, 如果期间又有新转写则再跑, 直到窗口干净
func (a *Analyzer) loop(callId string, cc *callContext) {
	for {
		a.mu.Lock()
		// 通话可能已经结束
		if _, ok := a.contexts[callId]; !ok {
			cc.running = false
			a.mu.Unlock()
			return
		}
		elder := cc.elder
		window := append([]*session.TranscriptLine(nil), cc.window...)
		a.mu.Unlock()

		a.analyzeOnce(callId, elder, window)

		a.mu.Lock()
		if cc.dirty {
			cc.dirty = false
			a.mu.Unlock()
			continue
		}
		cc.running = false
		a.mu.Unlock()
		return
	}
}

// analyzeOnce 一次完整的分析: 调模型, 解析, 落库, 广播, 触发转介
// 任何失败都只是"本轮没有洞察", 不向外传播
func (a *Analyzer) analyzeOnce(callId string, elder *village.Elder, window []*session.TranscriptLine) {
	if a.app == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	raw, err := a.app.Call(ctx, buildPrompt(elder, window))
	if err != nil {
		log.Error("analyze call err: ", err)
		return
	}
	in := parse(raw)
	if in == nil {
		log.Info("analyze: unparseable response, skip round, callId: ", callId)
		return
	}

	a.apply(callId, elder, in)
}

// apply 把一轮洞察写进会话并按产出顺序广播
func (a *Analyzer) apply(callId string, elder *village.Elder, in *Insight) {
	if in.Wellbeing != nil {
		if err := a.store.UpdateWellbeing(callId, in.Wellbeing); err != nil {
			return
		}
		a.hub.Publish(callId, consts.EventWellbeingUpdated, in.Wellbeing)
	}

	// 本轮第一个需要行动的信号, 用于和建议动作关联
	var actionableConcern string
	for _, c := range in.Concerns {
		c.Id = uuid.NewString()
		c.DetectedAt = time.Now()
		if err := a.store.AppendConcern(callId, c); err != nil {
			return
		}
		a.hub.Publish(callId, consts.EventConcernDetected, c)
		if c.ActionRequired && actionableConcern == "" {
			actionableConcern = c.Id
		}
		if c.Severity == "critical" {
			a.alert(elder, c)
		}
	}

	for _, f := range in.Facts {
		f.Id = uuid.NewString()
		f.LearnedAt = time.Now()
		f.SourceCallId = callId
		if err := a.store.AppendProfileFact(callId, f); err != nil {
			return
		}
		a.hub.Publish(callId, consts.EventProfileFactAdded, f)
	}

	for _, sa := range in.Actions {
		recipient := village.Resolve(elder.Village, sa.ActionType, sa.SuggestedContact)
		if recipient == nil {
			log.Info("no available village member for action: ", sa.ActionType)
			continue
		}
		a.dispatcher.Dispatch(callId, recipient, actionableConcern, sa.ActionType, sa.Reason, sa.Urgency)
	}
}

// alert critical级风险补一封值班邮件, 纯尽力而为
func (a *Analyzer) alert(elder *village.Elder, c *session.Concern) {
	if config.GetConfig() == nil {
		return
	}
	detail := c.Description
	gopool.Go(func() {
		if err := util.AlertEMail(elder.Name, detail); err != nil {
			log.Error("alert mail err: ", err)
		}
	})
}
