package dto

import "github.com/xh-polaris/village-senior/biz/domain/session"

type (
	// StartCallReq 发起一次关怀通话
	StartCallReq struct {
		ElderId string `json:"elder_id"`
		// PhoneNumber E.164格式, 为空时走网页端接入
		PhoneNumber string `json:"phone_number,omitempty"`
		RoomName    string `json:"room_name,omitempty"`
	}

	// StartCallResp 发起通话的结果
	StartCallResp struct {
		Code             int    `json:"code"`
		Msg              string `json:"msg"`
		CallId           string `json:"call_id"`
		RoomName         string `json:"room_name"`
		ElderName        string `json:"elder_name"`
		SipParticipantId string `json:"sip_participant_id,omitempty"`
		// Token 网页端加入房间用的访问令牌, 外呼模式下为空
		Token string `json:"token,omitempty"`
		Url   string `json:"url,omitempty"`
	}

	// TranscriptReq 语音侧回传的一条转写
	TranscriptReq struct {
		CallId      string `json:"call_id"`
		Speaker     string `json:"speaker"`
		SpeakerName string `json:"speaker_name,omitempty"`
		Text        string `json:"text"`
		// Timestamp 秒级时间戳, 缺省取服务端当前时间
		Timestamp int64 `json:"timestamp,omitempty"`
	}

	// CallStatusReq 电话服务回调的状态信号
	CallStatusReq struct {
		CallId string `json:"call_id"`
		Status string `json:"status"`
	}

	// EndCallReq 结束通话
	EndCallReq struct {
		CallId string `json:"call_id"`
	}

	// GetCallReq 查询单个会话
	GetCallReq struct {
		CallId string `query:"call_id"`
	}

	// GetCallResp 单个会话快照
	GetCallResp struct {
		Code    int                  `json:"code"`
		Msg     string               `json:"msg"`
		Session *session.CallSession `json:"session"`
	}

	// ListActiveResp 活跃会话列表
	ListActiveResp struct {
		Code     int                    `json:"code"`
		Msg      string                 `json:"msg"`
		Sessions []*session.CallSession `json:"sessions"`
		Total    int64                  `json:"total"`
	}

	// ListActiveReq 查询活跃会话
	ListActiveReq struct {
		ElderId string `query:"elder_id"`
		Limit   int    `query:"limit"`
	}

	// SessionStarted 全局广播的新会话事件负载
	SessionStarted struct {
		CallId   string `json:"call_id"`
		ElderId  string `json:"elder_id"`
		RoomName string `json:"room_name"`
	}

	// StatusChanged 通话状态迁移事件负载
	StatusChanged struct {
		CallId string `json:"call_id"`
		Status string `json:"status"`
	}

	// SessionEnded 会话结束事件负载
	SessionEnded struct {
		CallId          string `json:"call_id"`
		Status          string `json:"status"`
		DurationSeconds int64  `json:"duration_seconds"`
	}

	// MonitorReq 订阅端命令, cmd: 0订阅 1心跳 2退订 -1结束
	MonitorReq struct {
		Cmd    int64  `json:"cmd"`
		CallId string `json:"call_id,omitempty"`
	}

	// DialogLine 暂存到redis的一条转写
	DialogLine struct {
		Speaker string `json:"speaker"`
		Name    string `json:"name,omitempty"`
		Text    string `json:"text"`
	}

	// CallReport 通话总结报告
	CallReport struct {
		Overview   string   `json:"overview"`
		Keywords   []string `json:"keywords"`
		Grade      string   `json:"grade"`
		Suggestion []string `json:"suggestion"`
	}
)
