package livekit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/util"
)

var _ model.TelephonyApp = (*LkApp)(nil)

// LkApp 是LiveKit电话/录音服务的客户端
// 走server端的twirp接口, 鉴权用短期JWT
type LkApp struct {
	url       string
	apiKey    string
	apiSecret string
	trunkId   string
}

// NewLkApp 创建LiveKit客户端, 配置不完整时返回nil表示降级
func NewLkApp(c *config.LiveKit) model.TelephonyApp {
	if c.Url == "" || c.ApiKey == "" || c.ApiSecret == "" {
		return nil
	}
	return &LkApp{
		url:       toHttp(c.Url),
		apiKey:    c.ApiKey,
		apiSecret: c.ApiSecret,
		trunkId:   c.TrunkId,
	}
}

// toHttp 信令地址是wss的, twirp接口要转成https
func toHttp(url string) string {
	url = strings.TrimSuffix(url, "/")
	url = strings.Replace(url, "wss://", "https://", 1)
	url = strings.Replace(url, "ws://", "http://", 1)
	return url
}

// PlaceCall 经SIP中继外呼一个号码并接入房间
func (app *LkApp) PlaceCall(ctx context.Context, req *model.PlaceCallReq) (*model.PlaceCallResp, error) {
	if app.trunkId == "" {
		return nil, fmt.Errorf("sip trunk id未配置")
	}

	// 号码兜底成E.164
	num := strings.TrimSpace(req.To)
	if !strings.HasPrefix(num, "+") {
		num = "+" + num
	}

	token, err := app.adminToken(req.Identity)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Content-Type", "application/json")

	body := map[string]any{
		"sip_trunk_id":         app.trunkId,
		"sip_call_to":          num,
		"room_name":            req.RoomName,
		"participant_identity": req.Identity,
		"participant_name":     req.Name,
	}
	res, err := util.GetHttpClient().Req(ctx, consts.Post, app.url+"/twirp/livekit.SIP/CreateSIPParticipant", header, body)
	if err != nil {
		return nil, err
	}
	glog.Infof("CreateSIPParticipant response: %v", res)

	pid, _ := res["participant_id"].(string)
	return &model.PlaceCallResp{ParticipantId: pid}, nil
}

// StartRoomRecording 对房间开启纯音频合成录制
func (app *LkApp) StartRoomRecording(ctx context.Context, roomName, outputPath string) (string, error) {
	token, err := app.adminToken("egress-" + roomName)
	if err != nil {
		return "", err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Content-Type", "application/json")

	body := map[string]any{
		"room_name":  roomName,
		"audio_only": true,
		"file_outputs": []map[string]any{
			{"filepath": outputPath},
		},
	}
	res, err := util.GetHttpClient().Req(ctx, consts.Post, app.url+"/twirp/livekit.Egress/StartRoomCompositeEgress", header, body)
	if err != nil {
		return "", err
	}
	glog.Infof("StartRoomCompositeEgress response: %v", res)

	egressId, _ := res["egress_id"].(string)
	return egressId, nil
}

// AccessToken 为网页端签发进房令牌
func (app *LkApp) AccessToken(identity, name, roomName string) (string, error) {
	return app.token(identity, name, &videoGrant{
		RoomJoin: true,
		Room:     roomName,
	}, nil, 6*time.Hour)
}

// adminToken server接口用的管理令牌
func (app *LkApp) adminToken(identity string) (string, error) {
	return app.token(identity, "", &videoGrant{
		RoomCreate: true,
		RoomAdmin:  true,
		RoomRecord: true,
	}, &sipGrant{Admin: true, Call: true}, 10*time.Minute)
}
