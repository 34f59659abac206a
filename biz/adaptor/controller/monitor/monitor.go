package monitor

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/adaptor"
	"github.com/xh-polaris/village-senior/provider"
)

// Monitor 订阅端接入, 升级为websocket后进入订阅循环
// @router /monitor [GET]
func Monitor(ctx context.Context, c *app.RequestContext) {
	p := provider.Get()
	// 尝试升级协议, 并处理
	err := adaptor.UpgradeWs(ctx, c, p.MonitorService.Handle)
	if err != nil {
		log.Error(err.Error())
	}
}
