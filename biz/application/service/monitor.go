package service

import (
	"context"

	"github.com/google/wire"
	"github.com/hertz-contrib/websocket"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/biz/domain"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// MonitorService 订阅端websocket的接入处理
// 连接建立先回connected确认, 之后只推事件;
// 错过的事件不回放, 订阅端自己去查当前会话状态
type MonitorService struct {
	Hub *hub.Hub
}

var MonitorServiceSet = wire.NewSet(
	wire.Struct(new(MonitorService), "*"),
)

// Handle 单个订阅连接的读循环 TODO: 应该需要加上超时处理，避免连接空置太长时间
func (s *MonitorService) Handle(ctx context.Context, conn *websocket.Conn) {
	ws := domain.NewWsHelper(conn)
	handle := s.Hub.Connect(ws)
	defer func() {
		s.Hub.Disconnect(handle)
		_ = ws.Close()
	}()

	// 接入确认
	if err := ws.WriteJSON(&dto.Event{Type: "connected"}); err != nil {
		return
	}

	var req dto.MonitorReq
	for {
		if err := ws.ReadJSON(&req); err != nil {
			log.Info("monitor read err: ", err)
			return
		}
		switch req.Cmd {
		case consts.SubscribeCmd:
			if req.CallId == "" {
				_ = ws.Error(consts.ErrInvalidParam)
				continue
			}
			s.Hub.Subscribe(handle, req.CallId)
			_ = ws.WriteJSON(&dto.Event{Type: "subscribed", CallId: req.CallId})
		case consts.UnsubscribeCmd:
			s.Hub.Unsubscribe(handle, req.CallId)
		case consts.Ping:
			_ = ws.WriteJSON(&dto.Event{Type: "pong"})
		case consts.EndCmd:
			return
		}
	}
}
