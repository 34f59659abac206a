package model

import (
	"context"

	"github.com/xh-polaris/village-senior/biz/application/dto"
)

// AnalyzeApp 是第三方增量分析大模型应用的抽象
// 输入一段结构化提示词, 输出裸文本, 解析由调用方负责
type AnalyzeApp interface {
	// Call 单次调用, 外层会包超时
	Call(ctx context.Context, prompt string) (string, error)

	// Close 关闭资源
	Close() error
}

// ReportApp 是第三方通话总结大模型应用的抽象
type ReportApp interface {
	// Call 获取总结报告
	Call(ctx context.Context, msg string) (*dto.CallReport, error)

	// Close 关闭资源
	Close() error
}

// PlaceCallReq 一次外呼请求
type PlaceCallReq struct {
	// To E.164格式的被叫号码
	To string
	// RoomName 呼叫接入的房间
	RoomName string
	// Identity 呼叫方标识
	Identity string
	// Name 展示名
	Name string
}

// PlaceCallResp 外呼结果
type PlaceCallResp struct {
	ParticipantId string
}

// TelephonyApp 是电话/SIP服务的抽象
type TelephonyApp interface {
	// PlaceCall 经SIP中继拨出电话
	PlaceCall(ctx context.Context, req *PlaceCallReq) (*PlaceCallResp, error)

	// StartRoomRecording 开始房间录音, 返回egress id
	StartRoomRecording(ctx context.Context, roomName, outputPath string) (string, error)

	// AccessToken 为网页端签发进房令牌
	AccessToken(identity, name, roomName string) (string, error)
}
