package analyze

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xh-polaris/village-senior/biz/domain/escalate"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// stubApp 可阻塞的分析模型桩, block非nil时第一次调用挂起直到其关闭
type stubApp struct {
	mu    sync.Mutex
	calls []string
	resp  string
	block chan struct{}
}

func (s *stubApp) Call(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, prompt)
	n := len(s.calls)
	block := s.block
	s.mu.Unlock()
	if block != nil && n == 1 {
		<-block
	}
	return s.resp, nil
}

func (s *stubApp) Close() error { return nil }

func (s *stubApp) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubApp) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

func testElder() *village.Elder {
	return &village.Elder{
		Id:   "e1",
		Name: "Margaret Chen",
		Village: []*village.VillageMember{
			{Id: "m-1", Name: "Susan", Role: "family", Phone: "+1001", Available: true},
		},
	}
}

func newAnalyzer(app *stubApp) (*Analyzer, *session.Store) {
	st := session.NewStore()
	h := hub.NewHub()
	d := escalate.NewDispatcher(st, h, nil, &config.Escalate{ConnectWaitMs: 10, AnswerTimeoutMs: 100, SimulateWaitMs: 1})
	var a *Analyzer
	if app == nil {
		a = NewAnalyzer(nil, st, h, d, &config.Analyze{TimeoutMs: 1000})
	} else {
		a = NewAnalyzer(app, st, h, d, &config.Analyze{TimeoutMs: 1000})
	}
	return a, st
}

func line(text string) *session.TranscriptLine {
	return &session.TranscriptLine{Id: text, Speaker: consts.SpeakerElder, Text: text, Timestamp: time.Now()}
}

// waitFor 轮询直到条件满足
func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestColdStartSuppression(t *testing.T) {
	app := &stubApp{resp: "{}"}
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	a.Submit("c1", elder, line("u01"))
	a.Submit("c1", elder, line("u02"))
	time.Sleep(50 * time.Millisecond)
	if app.count() != 0 {
		t.Fatalf("不足3条不应触发分析: %d", app.count())
	}

	a.Submit("c1", elder, line("u03"))
	waitFor(t, "第3条应触发首轮分析", func() bool { return app.count() == 1 })
}

func TestInsightApplied(t *testing.T) {
	app := &stubApp{resp: `{
		"wellbeing": {"mood": "sad", "loneliness_level": "high", "overall_concern_level": "high"},
		"concerns": [{"type": "loneliness", "severity": "high", "description": "talks about being alone", "action_required": true}],
		"profile_updates": [{"category": "interest", "fact": "used to play bridge"}],
		"suggested_actions": [{"action_type": "call_family", "urgency": "soon", "reason": "needs family contact"}]
	}`}
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	a.Submit("c1", elder, line("u01"))
	a.Submit("c1", elder, line("u02"))
	a.Submit("c1", elder, line("u03"))

	waitFor(t, "健康快照应落进会话", func() bool {
		s, _ := st.Get("c1")
		return s.Wellbeing != nil
	})

	s, _ := st.Get("c1")
	if s.Wellbeing.Emotional.CurrentMood != "sad" {
		t.Errorf("mood = %s", s.Wellbeing.Emotional.CurrentMood)
	}
	if len(s.Concerns) == 0 || s.Concerns[0].Id == "" || s.Concerns[0].DetectedAt.IsZero() {
		t.Fatalf("concern应带上id与时间: %+v", s.Concerns)
	}
	if len(s.ProfileFacts) == 0 || s.ProfileFacts[0].SourceCallId != "c1" {
		t.Errorf("facts = %+v", s.ProfileFacts)
	}

	waitFor(t, "建议动作应触发转介", func() bool {
		s, _ := st.Get("c1")
		return len(s.Actions) > 0
	})
	s, _ = st.Get("c1")
	if s.Actions[0].Recipient == nil || s.Actions[0].Recipient.Id != "m-1" {
		t.Errorf("应选中family成员: %+v", s.Actions[0].Recipient)
	}
	if s.Actions[0].ConcernId != s.Concerns[0].Id {
		t.Error("动作应关联本轮需行动的concern")
	}
}

func TestWindowTrim(t *testing.T) {
	app := &stubApp{resp: "{}"}
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	for i := 1; i <= 12; i++ {
		a.Submit("c1", elder, line(fmt.Sprintf("u%02d", i)))
	}

	waitFor(t, "末轮分析应包含最新一条", func() bool {
		return strings.Contains(app.last(), "u12")
	})
	prompt := app.last()
	if strings.Contains(prompt, "u01") || strings.Contains(prompt, "u02") {
		t.Error("窗口外的旧转写不应进入提示词")
	}
	if !strings.Contains(prompt, "u03") {
		t.Error("窗口内的转写应保留")
	}
}

func TestSingleFlightWithDirtyRerun(t *testing.T) {
	app := &stubApp{resp: "{}", block: make(chan struct{})}
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	a.Submit("c1", elder, line("u01"))
	a.Submit("c1", elder, line("u02"))
	a.Submit("c1", elder, line("u03"))
	waitFor(t, "首轮应开始", func() bool { return app.count() == 1 })

	// 在途期间追加, 不应并发发起第二次调用
	a.Submit("c1", elder, line("u04"))
	time.Sleep(50 * time.Millisecond)
	if app.count() != 1 {
		t.Fatalf("同一通话应单飞: %d", app.count())
	}

	close(app.block)
	waitFor(t, "首轮结束后应补跑一轮", func() bool { return app.count() == 2 })
	if !strings.Contains(app.last(), "u04") {
		t.Error("补跑应带上在途期间新到的转写")
	}
}

func TestCallsIndependent(t *testing.T) {
	// c1的模型调用挂起, c2不受影响
	app := &stubApp{resp: "{}", block: make(chan struct{})}
	defer close(app.block)
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	st.Create(&session.CallSession{Id: "c2", ElderId: "e1"})
	elder := testElder()

	a.Submit("c1", elder, line("u01"))
	a.Submit("c1", elder, line("u02"))
	a.Submit("c1", elder, line("u03"))
	waitFor(t, "c1首轮应开始", func() bool { return app.count() == 1 })

	a.Submit("c2", elder, line("v01"))
	a.Submit("c2", elder, line("v02"))
	a.Submit("c2", elder, line("v03"))
	waitFor(t, "c1挂起期间c2应正常分析", func() bool { return app.count() == 2 })
}

func TestNilAppDegraded(t *testing.T) {
	a, st := newAnalyzer(nil)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	for i := 1; i <= 5; i++ {
		a.Submit("c1", elder, line(fmt.Sprintf("u%02d", i)))
	}
	time.Sleep(50 * time.Millisecond)

	s, _ := st.Get("c1")
	if s.Wellbeing != nil || len(s.Concerns) != 0 {
		t.Error("模型未配置时不应产出洞察")
	}
}

func TestDestroyResetsContext(t *testing.T) {
	app := &stubApp{resp: "{}"}
	a, st := newAnalyzer(app)
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	elder := testElder()

	a.Submit("c1", elder, line("u01"))
	a.Submit("c1", elder, line("u02"))
	a.Submit("c1", elder, line("u03"))
	waitFor(t, "首轮应触发", func() bool { return app.count() >= 1 })

	a.Destroy("c1")
	before := app.count()
	// 销毁后窗口清零, 单条转写回到冷启动抑制
	a.Submit("c1", elder, line("u04"))
	time.Sleep(50 * time.Millisecond)
	if app.count() != before {
		t.Errorf("销毁后应重新冷启动: %d -> %d", before, app.count())
	}
}
