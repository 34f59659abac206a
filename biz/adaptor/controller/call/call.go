package call

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/xh-polaris/village-senior/biz/adaptor"
	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/provider"
)

// StartCall 发起一次关怀通话
// @router /call/start [POST]
func StartCall(ctx context.Context, c *app.RequestContext) {
	var req dto.StartCallReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.StartCall(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Transcript 语音侧回传一条转写
// @router /call/transcript [POST]
func Transcript(ctx context.Context, c *app.RequestContext) {
	var req dto.TranscriptReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.Transcript(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// SetStatus 电话服务回调的状态信号
// @router /call/status [POST]
func SetStatus(ctx context.Context, c *app.RequestContext) {
	var req dto.CallStatusReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.SetStatus(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// EndCall 结束通话
// @router /call/end [POST]
func EndCall(ctx context.Context, c *app.RequestContext) {
	var req dto.EndCallReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.EndCall(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// GetCall 查询单个会话快照
// @router /call/get [GET]
func GetCall(ctx context.Context, c *app.RequestContext) {
	var req dto.GetCallReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.GetCall(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListActive 查询活跃会话
// @router /call/active [GET]
func ListActive(ctx context.Context, c *app.RequestContext) {
	var req dto.ListActiveReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallService.ListActive(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
