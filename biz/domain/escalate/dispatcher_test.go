package escalate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// fakeTel 可注入失败的电话服务桩
type fakeTel struct {
	err error
}

func (f *fakeTel) PlaceCall(ctx context.Context, req *model.PlaceCallReq) (*model.PlaceCallResp, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.PlaceCallResp{ParticipantId: "sip-p1"}, nil
}

func (f *fakeTel) StartRoomRecording(ctx context.Context, roomName, outputPath string) (string, error) {
	return "egress-1", nil
}

func (f *fakeTel) AccessToken(identity, name, roomName string) (string, error) {
	return "token", nil
}

// captureSender 收集状态迁移事件
type captureSender struct {
	mu     sync.Mutex
	events []*dto.Event
}

func (c *captureSender) WriteJSON(obj any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, obj.(*dto.Event))
	return nil
}

func (c *captureSender) Close() error { return nil }

func (c *captureSender) statuses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		if e.Type != consts.EventEscalationStatusChange {
			continue
		}
		out = append(out, e.Data.(*statusEvent).Status)
	}
	return out
}

func (c *captureSender) lastOutcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if se, ok := c.events[i].Data.(*statusEvent); ok {
			return se.Outcome
		}
	}
	return ""
}

func testConfig() *config.Escalate {
	return &config.Escalate{ConnectWaitMs: 20, AnswerTimeoutMs: 200, SimulateWaitMs: 5}
}

func member() *village.VillageMember {
	return &village.VillageMember{Id: "m-1", Name: "Susan", Role: "family", Phone: "+1001", Relationship: "daughter", Available: true}
}

func setup(t *testing.T, tel model.TelephonyApp) (*Dispatcher, *session.Store, *captureSender) {
	t.Helper()
	st := session.NewStore()
	st.Create(&session.CallSession{Id: "c1", ElderId: "e1"})
	h := hub.NewHub()
	sink := &captureSender{}
	hd := h.Connect(sink)
	h.Subscribe(hd, "c1")
	return NewDispatcher(st, h, tel, testConfig()), st, sink
}

// waitTerminal 轮询等待动作到达终态
func waitTerminal(t *testing.T, st *session.Store, callId, actionId string) *session.EscalationAction {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s, err := st.Get(callId)
		if err != nil {
			t.Fatal(err)
		}
		for _, a := range s.Actions {
			if a.Id == actionId && a.Terminal() {
				return a
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("动作未在限期内到达终态")
	return nil
}

func TestDispatchTelephonyError(t *testing.T) {
	d, st, sink := setup(t, &fakeTel{err: errors.New("trunk unavailable")})

	action := d.Dispatch("c1", member(), "", "call_family", "check in", "soon")
	if action == nil || action.Status != consts.ActionPending {
		t.Fatalf("同步返回应是pending快照: %+v", action)
	}

	got := waitTerminal(t, st, "c1", action.Id)
	if got.Status != consts.ActionFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}

	want := []string{consts.ActionPending, consts.ActionCalling, consts.ActionFailed}
	statuses := sink.statuses()
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("第%d个状态 = %s, want %s", i, statuses[i], want[i])
		}
	}
	if out := sink.lastOutcome(); out == "" {
		t.Error("失败原因应写进outcome")
	}
}

func TestDispatchConnected(t *testing.T) {
	d, st, sink := setup(t, &fakeTel{})

	action := d.Dispatch("c1", member(), "", "call_family", "check in", "soon")
	got := waitTerminal(t, st, "c1", action.Id)
	if got.Status != consts.ActionConnected {
		t.Errorf("status = %s, want connected", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("终态应填CompletedAt")
	}

	want := []string{consts.ActionPending, consts.ActionCalling, consts.ActionRinging, consts.ActionConnected}
	statuses := sink.statuses()
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
}

func TestDispatchSimulation(t *testing.T) {
	// tel为nil时走模拟路径, 状态机形状与真实外呼一致
	d, st, _ := setup(t, nil)

	action := d.Dispatch("c1", member(), "", "call_neighbor", "lonely", "routine")
	got := waitTerminal(t, st, "c1", action.Id)
	if got.Status != consts.ActionConnected {
		t.Errorf("status = %s, want connected", got.Status)
	}
}

func TestDispatchNoPhone(t *testing.T) {
	d, st, _ := setup(t, &fakeTel{})

	m := member()
	m.Phone = ""
	action := d.Dispatch("c1", m, "", "call_family", "check in", "soon")
	got := waitTerminal(t, st, "c1", action.Id)
	if got.Status != consts.ActionFailed {
		t.Errorf("没有联系方式应直接失败: %s", got.Status)
	}
}

func TestDispatchResolvesConcern(t *testing.T) {
	d, st, _ := setup(t, nil)
	_ = st.AppendConcern("c1", &session.Concern{Id: "k1", Severity: "high", ActionRequired: true})

	action := d.Dispatch("c1", member(), "k1", "call_family", "check in", "immediate")
	waitTerminal(t, st, "c1", action.Id)

	s, _ := st.Get("c1")
	c := s.Concerns[0]
	if len(c.ActionsTriggered) != 1 || c.ActionsTriggered[0] != action.Id {
		t.Errorf("风险信号应关联动作: %v", c.ActionsTriggered)
	}

	// 接通后异步标记已处理
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s, _ = st.Get("c1")
		if s.Concerns[0].Resolved {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("接通后风险信号应被标记为已处理")
}

func TestDispatchConcurrentSnapshots(t *testing.T) {
	// 后台推进期间持续读快照, 动作状态只能经注册表的锁流动
	d, st, _ := setup(t, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := st.Get("c1"); err != nil {
				return
			}
			st.ListActive("", 0)
		}
	}()

	actions := make([]*session.EscalationAction, 0, 20)
	for i := 0; i < 20; i++ {
		if a := d.Dispatch("c1", member(), "", "call_family", "check in", "routine"); a != nil {
			actions = append(actions, a)
		}
	}
	for _, a := range actions {
		waitTerminal(t, st, "c1", a.Id)
	}
	close(stop)
	wg.Wait()

	// 返回的快照在后台推进开始前取出, 不随后续迁移变化
	for _, a := range actions {
		if a.Status != consts.ActionPending {
			t.Errorf("快照被后台推进污染: %s", a.Status)
		}
	}
}

func TestDispatchDeadSession(t *testing.T) {
	d, st, _ := setup(t, nil)
	_, _ = st.Complete("c1")

	if action := d.Dispatch("c1", member(), "", "call_family", "check in", "soon"); action != nil {
		t.Errorf("会话已结束时动作应作废: %+v", action)
	}
}
