package bailian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/util"
)

var _ model.ReportApp = (*BLReportApp)(nil)

// BLReportApp 是阿里云通话总结大模型应用
// 单次对话, 无需管理上下文
type BLReportApp struct {
	appId  string
	apiKey string
	url    string
	header http.Header
}

// NewBLReportApp 创建一个百炼通话总结模型应用实例
func NewBLReportApp(appId string, apiKey string) model.ReportApp {
	app := &BLReportApp{
		appId:  appId,
		apiKey: apiKey,
		url:    fmt.Sprintf("https://dashscope.aliyuncs.com/api/v1/apps/%s/completion", appId),
		header: http.Header{},
	}

	app.header.Set("Authorization", "Bearer "+apiKey)
	app.header.Set("Content-Type", "application/json")

	return app
}

var instance model.ReportApp
var once sync.Once

// GetBLReportApp 获取百炼通话总结模型单例
func GetBLReportApp() model.ReportApp {
	once.Do(func() {
		c := config.GetConfig()
		instance = NewBLReportApp(c.BaiLianReport.AppId, c.BaiLianReport.ApiKey)
	})
	return instance
}

func (app *BLReportApp) Call(ctx context.Context, prompt string) (*dto.CallReport, error) {
	var err error
	var report dto.CallReport
	client := util.GetHttpClient()

	body := map[string]any{
		"input":      map[string]string{"prompt": prompt},
		"parameters": map[string]any{},
	}
	res, err := client.Req(ctx, consts.Post, app.url, app.header, body)
	if err != nil {
		return nil, err
	}
	output, ok := res["output"].(map[string]any)
	if !ok {
		return nil, nil
	}
	text, ok := output["text"].(string)
	if !ok {
		return nil, nil
	}
	text = strings.Replace(text, "`", "", -1)
	log.Info("report result:", text)
	err = json.Unmarshal([]byte(text), &report)
	return &report, err
}

// Close 释放相关资源
// 暂时没有需要释放的资源
func (app *BLReportApp) Close() error {
	return nil
}
