package call

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/xh-polaris/village-senior/biz/adaptor"
	"github.com/xh-polaris/village-senior/biz/adaptor/cmd"
	"github.com/xh-polaris/village-senior/provider"
)

// ListCallRecord .
// @router /call/history/list [GET]
func ListCallRecord(ctx context.Context, c *app.RequestContext) {
	var req cmd.ListCallRecordReq
	if err := c.BindAndValidate(&req); err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CallRecordService.ListCallRecord(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
