package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

func newSession(st *Store, id string) *CallSession {
	return st.Create(&CallSession{Id: id, ElderId: "elder-1", RoomName: "room-" + id})
}

func TestCreateDefaults(t *testing.T) {
	st := NewStore()
	s := newSession(st, "c1")
	if s.Status != consts.CallRinging {
		t.Errorf("status = %s, want ringing", s.Status)
	}
	if s.StartedAt.IsZero() {
		t.Error("StartedAt应被填充")
	}
}

func TestFirstTranscriptPromotes(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")

	var promoted bool
	err := st.AppendTranscriptLine("c1", &TranscriptLine{Id: "l1", Speaker: consts.SpeakerElder, Text: "hello"}, func(p bool) { promoted = p })
	if err != nil {
		t.Fatal(err)
	}
	if !promoted {
		t.Error("第一条转写应触发ringing→in_progress")
	}
	_ = st.AppendTranscriptLine("c1", &TranscriptLine{Id: "l2", Speaker: consts.SpeakerAgent, Text: "hi"}, func(p bool) { promoted = p })
	if promoted {
		t.Error("后续转写不应再触发迁移")
	}

	s, _ := st.Get("c1")
	if s.Status != consts.CallInProgress {
		t.Errorf("status = %s, want in_progress", s.Status)
	}
	if len(s.Transcript) != 2 || s.Transcript[0].Id != "l1" || s.Transcript[1].Id != "l2" {
		t.Errorf("转写应保持追加顺序: %+v", s.Transcript)
	}
}

func TestAppendDeliveryOrder(t *testing.T) {
	// 并发追加时交付回调与转写保持同一顺序, 下游不会看到交叉
	st := NewStore()
	newSession(st, "c1")

	var mu sync.Mutex
	delivered := make([]string, 0, 64)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				id := fmt.Sprintf("g%d-%02d", g, i)
				_ = st.AppendTranscriptLine("c1", &TranscriptLine{Id: id}, func(bool) {
					mu.Lock()
					delivered = append(delivered, id)
					mu.Unlock()
				})
			}
		}(g)
	}
	wg.Wait()

	s, _ := st.Get("c1")
	if len(s.Transcript) != len(delivered) {
		t.Fatalf("追加%d条, 交付%d条", len(s.Transcript), len(delivered))
	}
	for i, l := range s.Transcript {
		if delivered[i] != l.Id {
			t.Fatalf("第%d条交付顺序错乱: %s != %s", i, delivered[i], l.Id)
		}
	}
}

func TestSetStatusMonotonic(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")

	if err := st.SetStatus("c1", consts.CallInProgress); err != nil {
		t.Fatal(err)
	}
	// 逆向迁移应被丢弃而不报错
	if err := st.SetStatus("c1", consts.CallRinging); err != nil {
		t.Fatal(err)
	}
	s, _ := st.Get("c1")
	if s.Status != consts.CallInProgress {
		t.Errorf("status = %s, 逆向迁移不应生效", s.Status)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")
	_ = st.AppendTranscriptLine("c1", &TranscriptLine{Id: "l1", Text: "hello"}, nil)

	first, err := st.Complete("c1")
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != consts.CallCompleted {
		t.Errorf("status = %s, want completed", first.Status)
	}
	if first.EndedAt == nil {
		t.Fatal("EndedAt应被填充")
	}

	second, err := st.Complete("c1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != first.Status || !second.EndedAt.Equal(*first.EndedAt) {
		t.Error("重复Complete应原样返回历史记录")
	}

	if got := st.ListActive("", 0); len(got) != 0 {
		t.Errorf("结束后不应再出现在活跃列表: %d", len(got))
	}
	if _, err := st.Get("c1"); err != nil {
		t.Errorf("历史会话应仍可查询: %v", err)
	}
}

func TestCompleteWithoutTranscript(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")

	s, err := st.Complete("c1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != consts.CallNoAnswer {
		t.Errorf("status = %s, 没人说话应记为no_answer", s.Status)
	}
}

func TestGetUnknown(t *testing.T) {
	st := NewStore()
	if _, err := st.Get("nope"); err != consts.ErrCallNotFound {
		t.Errorf("err = %v, want ErrCallNotFound", err)
	}
}

func TestActionTerminalStampsCompletedAt(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")
	_ = st.AppendAction("c1", &EscalationAction{Id: "a1", CallId: "c1", Status: consts.ActionPending})

	_ = st.UpdateActionStatus("c1", "a1", consts.ActionCalling, "")
	s, _ := st.Get("c1")
	if s.Actions[0].CompletedAt != nil {
		t.Error("非终态不应填CompletedAt")
	}

	_ = st.UpdateActionStatus("c1", "a1", consts.ActionConnected, "done")
	s, _ = st.Get("c1")
	if s.Actions[0].CompletedAt == nil {
		t.Error("终态应填CompletedAt")
	}
	if s.Actions[0].Outcome != "done" {
		t.Errorf("outcome = %s", s.Actions[0].Outcome)
	}
}

func TestMarkConcernActioned(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")
	_ = st.AppendConcern("c1", &Concern{Id: "k1", Severity: "high"})

	_ = st.MarkConcernActioned("c1", "k1", "a1", false)
	_ = st.MarkConcernActioned("c1", "k1", "", true)

	s, _ := st.Get("c1")
	c := s.Concerns[0]
	if len(c.ActionsTriggered) != 1 || c.ActionsTriggered[0] != "a1" {
		t.Errorf("ActionsTriggered = %v", c.ActionsTriggered)
	}
	if !c.Resolved {
		t.Error("应标记为已处理")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewStore()
	newSession(st, "c1")
	_ = st.AppendConcern("c1", &Concern{Id: "k1"})

	snap, _ := st.Get("c1")
	snap.Status = "broken"
	snap.Concerns[0].Resolved = true

	fresh, _ := st.Get("c1")
	if fresh.Status != consts.CallRinging || fresh.Concerns[0].Resolved {
		t.Error("快照修改不应影响注册表内的状态")
	}
}

func TestListActiveFilter(t *testing.T) {
	st := NewStore()
	st.Create(&CallSession{Id: "c1", ElderId: "e1"})
	st.Create(&CallSession{Id: "c2", ElderId: "e2"})

	if got := st.ListActive("e1", 0); len(got) != 1 || got[0].Id != "c1" {
		t.Errorf("按老人过滤失败: %+v", got)
	}
	if got := st.ListActive("", 0); len(got) != 2 {
		t.Errorf("全量应为2: %d", len(got))
	}
}
