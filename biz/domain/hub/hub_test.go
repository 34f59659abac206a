package hub

import (
	"errors"
	"sync"
	"testing"

	"github.com/xh-polaris/village-senior/biz/application/dto"
)

// fakeSender 收集推送到的事件
type fakeSender struct {
	mu     sync.Mutex
	events []*dto.Event
	fail   bool
	closed bool
}

func (f *fakeSender) WriteJSON(obj any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.events = append(f.events, obj.(*dto.Event))
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func TestPublishOnlySubscribed(t *testing.T) {
	h := NewHub()
	sub := &fakeSender{}
	other := &fakeSender{}
	hd1 := h.Connect(sub)
	h.Connect(other)
	h.Subscribe(hd1, "c1")

	h.Publish("c1", "transcript_appended", nil)

	if got := sub.types(); len(got) != 1 || got[0] != "transcript_appended" {
		t.Errorf("订阅者应收到事件: %v", got)
	}
	if got := other.types(); len(got) != 0 {
		t.Errorf("未订阅者不应收到事件: %v", got)
	}
}

func TestPublishOrder(t *testing.T) {
	h := NewHub()
	sub := &fakeSender{}
	hd := h.Connect(sub)
	h.Subscribe(hd, "c1")

	h.Publish("c1", "e1", nil)
	h.Publish("c1", "e2", nil)
	h.Publish("c1", "e3", nil)

	got := sub.types()
	want := []string{"e1", "e2", "e3"}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("第%d个事件 = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	h := NewHub()
	// 没有订阅者时静默返回, 不panic
	h.Publish("c1", "e1", nil)
	h.PublishGlobal("e1", nil)
}

func TestFailingSubscriberEvicted(t *testing.T) {
	h := NewHub()
	bad := &fakeSender{fail: true}
	good := &fakeSender{}
	hd1 := h.Connect(bad)
	hd2 := h.Connect(good)
	h.Subscribe(hd1, "c1")
	h.Subscribe(hd2, "c1")

	h.Publish("c1", "e1", nil)

	if got := good.types(); len(got) != 1 {
		t.Errorf("正常订阅者不应受失败连接影响: %v", got)
	}
	if !bad.closed {
		t.Error("失败连接应被关闭")
	}

	// 被摘除的连接不再收到后续事件
	bad.mu.Lock()
	bad.fail = false
	bad.mu.Unlock()
	h.Publish("c1", "e2", nil)
	if got := bad.types(); len(got) != 0 {
		t.Errorf("被摘除连接不应再收事件: %v", got)
	}
}

func TestPublishGlobal(t *testing.T) {
	h := NewHub()
	s1 := &fakeSender{}
	s2 := &fakeSender{}
	h.Connect(s1)
	h.Connect(s2)

	h.PublishGlobal("session_started", nil)

	if len(s1.types()) != 1 || len(s2.types()) != 1 {
		t.Error("全局事件应推给全部在线连接")
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()
	s := &fakeSender{}
	hd := h.Connect(s)
	h.Subscribe(hd, "c1")
	h.Unsubscribe(hd, "c1")

	h.Publish("c1", "e1", nil)
	if got := s.types(); len(got) != 0 {
		t.Errorf("退订后不应收到事件: %v", got)
	}
}

func TestDisconnectClearsSubscriptions(t *testing.T) {
	h := NewHub()
	s := &fakeSender{}
	hd := h.Connect(s)
	h.Subscribe(hd, "c1")
	h.Disconnect(hd)

	h.Publish("c1", "e1", nil)
	h.PublishGlobal("e2", nil)
	if got := s.types(); len(got) != 0 {
		t.Errorf("断开后不应收到任何事件: %v", got)
	}
}
