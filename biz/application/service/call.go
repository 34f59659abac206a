package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
	"github.com/google/wire"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/biz/domain"
	"github.com/xh-polaris/village-senior/biz/domain/analyze"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/mq"
)

type ICallService interface {
	StartCall(ctx context.Context, req *dto.StartCallReq) (*dto.StartCallResp, error)
	Transcript(ctx context.Context, req *dto.TranscriptReq) (*dto.Response, error)
	SetStatus(ctx context.Context, req *dto.CallStatusReq) (*dto.Response, error)
	EndCall(ctx context.Context, req *dto.EndCallReq) (*dto.Response, error)
	GetCall(ctx context.Context, req *dto.GetCallReq) (*dto.GetCallResp, error)
	ListActive(ctx context.Context, req *dto.ListActiveReq) (*dto.ListActiveResp, error)
}

// CallService 通话生命周期的编排入口
// 把会话注册表, 分析器, 转介器和事件枢纽串成一条流水线
type CallService struct {
	Config   *config.Config
	Store    *session.Store
	Hub      *hub.Hub
	Analyzer *analyze.Analyzer
	Elders   *village.Registry
	// Tel 为nil表示电话服务未配置, 全程降级
	Tel model.TelephonyApp
}

var CallServiceSet = wire.NewSet(
	wire.Struct(new(CallService), "*"),
	wire.Bind(new(ICallService), new(*CallService)),
)

// StartCall 发起一次关怀通话
// 有号码时经SIP外呼, 没有号码时给网页端签发进房令牌;
// 电话服务不可用只降级, 不报错
func (s *CallService) StartCall(ctx context.Context, req *dto.StartCallReq) (*dto.StartCallResp, error) {
	elder := s.Elders.Get(req.ElderId)

	callId := uuid.NewString()
	roomName := req.RoomName
	if roomName == "" {
		roomName = fmt.Sprintf("call-%s", callId)
	}

	s.Store.Create(&session.CallSession{
		Id:       callId,
		ElderId:  elder.Id,
		RoomName: roomName,
	})
	s.Hub.PublishGlobal(consts.EventSessionStarted, &dto.SessionStarted{
		CallId:   callId,
		ElderId:  elder.Id,
		RoomName: roomName,
	})

	resp := &dto.StartCallResp{
		Code:      0,
		CallId:    callId,
		RoomName:  roomName,
		ElderName: elder.Name,
	}

	if s.Tel == nil {
		resp.Msg = "电话服务未配置, 会话以模拟模式运行"
		return resp, nil
	}

	// 录音尽力而为, 失败不影响通话
	s.record(callId, roomName)

	if req.PhoneNumber != "" {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		placed, err := s.Tel.PlaceCall(callCtx, &model.PlaceCallReq{
			To:       req.PhoneNumber,
			RoomName: roomName,
			Identity: fmt.Sprintf("sip-%s", callId),
			Name:     elder.Name,
		})
		if err != nil {
			// 外呼失败, 会话直接终结
			log.CtxError(ctx, "place call err: %v", err)
			_ = s.Store.SetStatus(callId, consts.CallFailed)
			_, _ = s.Store.Complete(callId)
			s.Hub.Publish(callId, consts.EventStatusChanged, &dto.StatusChanged{CallId: callId, Status: consts.CallFailed})
			resp.Msg = fmt.Sprintf("外呼失败: %s", err.Error())
			return resp, nil
		}
		resp.SipParticipantId = placed.ParticipantId
		resp.Msg = fmt.Sprintf("Calling %s...", req.PhoneNumber)
		return resp, nil
	}

	// 网页端接入
	token, err := s.Tel.AccessToken(fmt.Sprintf("user-%s", callId), elder.Name, roomName)
	if err != nil {
		log.CtxError(ctx, "sign token err: %v", err)
		resp.Msg = "令牌签发失败, 会话以模拟模式运行"
		return resp, nil
	}
	resp.Token = token
	resp.Url = s.Config.LiveKit.Url
	resp.Msg = "success"
	return resp, nil
}

// record 开启房间录音并回写路径
func (s *CallService) record(callId, roomName string) {
	gopool.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		path := fmt.Sprintf("recordings/%s.mp3", roomName)
		egressId, err := s.Tel.StartRoomRecording(ctx, roomName, path)
		if err != nil {
			log.Error("start recording err: ", err)
			return
		}
		log.Info("recording started, egress: ", egressId)
		_ = s.Store.SetRecordingPath(callId, path)
	})
}

// Transcript 语音侧回传一条转写
// 追加, 广播, 暂存, 再喂给分析器; 分析完全异步, 这里不等结果
func (s *CallService) Transcript(ctx context.Context, req *dto.TranscriptReq) (*dto.Response, error) {
	speaker := req.Speaker
	if speaker == "" {
		speaker = consts.SpeakerElder
	}
	line := &session.TranscriptLine{
		Id:          uuid.NewString(),
		Speaker:     speaker,
		SpeakerName: req.SpeakerName,
		Text:        req.Text,
	}
	if req.Timestamp > 0 {
		line.Timestamp = time.Unix(req.Timestamp, 0)
	}

	sess, err := s.Store.Get(req.CallId)
	if err != nil {
		return nil, err
	}
	elder := s.Elders.Get(sess.ElderId)

	// 广播和分析提交在交付回调里完成, 和追加在同一把锁内,
	// 并发请求在两条下游路径上都保持追加顺序
	err = s.Store.AppendTranscriptLine(req.CallId, line, func(promoted bool) {
		if promoted {
			s.Hub.Publish(req.CallId, consts.EventStatusChanged, &dto.StatusChanged{CallId: req.CallId, Status: consts.CallInProgress})
		}
		s.Hub.Publish(req.CallId, consts.EventTranscriptAppended, line)
		s.Analyzer.Submit(req.CallId, elder, line)
	})
	if err != nil {
		return nil, err
	}

	// redis暂存是落库镜像的中转, 失败只记日志
	if s.Config != nil && s.Config.Redis != nil {
		gopool.Go(func() {
			if err := domain.GetRedisHelper().AddLine(req.CallId, &dto.DialogLine{
				Speaker: line.Speaker,
				Name:    line.SpeakerName,
				Text:    line.Text,
			}); err != nil {
				log.Error("stage transcript err: ", err)
			}
		})
	}

	return &dto.Response{Code: 0, Msg: "success"}, nil
}

// SetStatus 电话服务回调的显式状态信号
func (s *CallService) SetStatus(ctx context.Context, req *dto.CallStatusReq) (*dto.Response, error) {
	if err := s.Store.SetStatus(req.CallId, req.Status); err != nil {
		return nil, err
	}
	s.Hub.Publish(req.CallId, consts.EventStatusChanged, &dto.StatusChanged{CallId: req.CallId, Status: req.Status})
	return &dto.Response{Code: 0, Msg: "success"}, nil
}

// EndCall 结束通话
// Complete幂等, 挂断请求和电话服务回调撞上也只结束一次
func (s *CallService) EndCall(ctx context.Context, req *dto.EndCallReq) (*dto.Response, error) {
	sess, err := s.Store.Complete(req.CallId)
	if err != nil {
		return nil, err
	}
	s.Analyzer.Destroy(req.CallId)
	s.Hub.Publish(req.CallId, consts.EventStatusChanged, &dto.StatusChanged{CallId: req.CallId, Status: sess.Status})
	s.Hub.Publish(req.CallId, consts.EventSessionEnded, &dto.SessionEnded{
		CallId:          req.CallId,
		Status:          sess.Status,
		DurationSeconds: sess.DurationSeconds,
	})

	// 投递落库消息, 镜像写失败不影响内存状态
	if len(sess.Transcript) > 0 && s.Config != nil && s.Config.RabbitMQ.Url != "" {
		elder := s.Elders.Get(sess.ElderId)
		if err := mq.GetRecordProducer().Produce(ctx, sess.Id, sess.ElderId, elder.Name, sess.Status, sess.StartedAt, *sess.EndedAt); err != nil {
			log.Error("消息发送失败, callId: ", sess.Id)
		}
	}
	return &dto.Response{Code: 0, Msg: "success"}, nil
}

// GetCall 查询单个会话快照
func (s *CallService) GetCall(ctx context.Context, req *dto.GetCallReq) (*dto.GetCallResp, error) {
	sess, err := s.Store.Get(req.CallId)
	if err != nil {
		return nil, err
	}
	return &dto.GetCallResp{Code: 0, Msg: "success", Session: sess}, nil
}

// ListActive 查询活跃会话
func (s *CallService) ListActive(ctx context.Context, req *dto.ListActiveReq) (*dto.ListActiveResp, error) {
	sessions := s.Store.ListActive(req.ElderId, req.Limit)
	return &dto.ListActiveResp{Code: 0, Msg: "success", Sessions: sessions, Total: int64(len(sessions))}, nil
}
