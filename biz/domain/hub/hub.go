package hub

import (
	"sync"
	"time"

	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/application/dto"
)

// Sender 订阅端连接的最小写入能力, WsHelper实现了它
type Sender interface {
	WriteJSON(obj any) error
	Close() error
}

// Handle 一个已接入的订阅者
type Handle struct {
	sender Sender
}

// Hub 订阅者集合与按通话id分组的事件广播
// 纯内存, 至多一次送达, 不做持久化和回放; 晚接入的订阅者
// 自己去会话注册表补拉当前状态
type Hub struct {
	mu sync.RWMutex
	// conns 全部在线连接
	conns map[*Handle]struct{}
	// subs callId -> 订阅该通话的连接
	subs map[string]map[*Handle]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*Handle]struct{}),
		subs:  make(map[string]map[*Handle]struct{}),
	}
}

// Connect 接入一个订阅者
func (h *Hub) Connect(s Sender) *Handle {
	hd := &Handle{sender: s}
	h.mu.Lock()
	h.conns[hd] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	log.Info("monitor connected, total: ", total)
	return hd
}

// Disconnect 摘除订阅者并清理其全部订阅
func (h *Hub) Disconnect(hd *Handle) {
	h.mu.Lock()
	delete(h.conns, hd)
	for _, set := range h.subs {
		delete(set, hd)
	}
	total := len(h.conns)
	h.mu.Unlock()
	log.Info("monitor disconnected, total: ", total)
}

// Subscribe 订阅某个通话的事件
func (h *Hub) Subscribe(hd *Handle, callId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[hd]; !ok {
		return
	}
	set, ok := h.subs[callId]
	if !ok {
		set = make(map[*Handle]struct{})
		h.subs[callId] = set
	}
	set[hd] = struct{}{}
}

// Unsubscribe 退订某个通话
func (h *Hub) Unsubscribe(hd *Handle, callId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[callId]; ok {
		delete(set, hd)
	}
}

// Publish 向订阅了callId的连接推送事件
// 没有订阅者时静默返回; 单个连接写失败只摘除它自己, 不影响其余订阅者
func (h *Hub) Publish(callId, eventType string, data any) {
	h.mu.RLock()
	set := h.subs[callId]
	targets := make([]*Handle, 0, len(set))
	for hd := range set {
		targets = append(targets, hd)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}
	h.send(targets, &dto.Event{
		Type:      eventType,
		CallId:    callId,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// PublishGlobal 向全部在线连接推送事件
func (h *Hub) PublishGlobal(eventType string, data any) {
	h.mu.RLock()
	targets := make([]*Handle, 0, len(h.conns))
	for hd := range h.conns {
		targets = append(targets, hd)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}
	h.send(targets, &dto.Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// send 逐个写出, 失败的连接就地摘除
func (h *Hub) send(targets []*Handle, ev *dto.Event) {
	for _, hd := range targets {
		if err := hd.sender.WriteJSON(ev); err != nil {
			log.Error("push event err: ", err)
			h.Disconnect(hd)
			_ = hd.sender.Close()
		}
	}
}
