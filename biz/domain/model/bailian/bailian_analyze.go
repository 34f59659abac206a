package bailian

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/util"
)

var _ model.AnalyzeApp = (*BLAnalyzeApp)(nil)

// BLAnalyzeApp 是阿里云增量分析大模型应用
// 单次对话, 无需管理上下文, 窗口拼接由分析器负责
type BLAnalyzeApp struct {
	appId  string
	apiKey string
	url    string
	header http.Header
}

// NewBLAnalyzeApp 创建一个百炼增量分析模型应用实例
func NewBLAnalyzeApp(appId string, apiKey string) model.AnalyzeApp {
	app := &BLAnalyzeApp{
		appId:  appId,
		apiKey: apiKey,
		url:    fmt.Sprintf("https://dashscope.aliyuncs.com/api/v1/apps/%s/completion", appId),
		header: http.Header{},
	}

	app.header.Set("Authorization", "Bearer "+apiKey)
	app.header.Set("Content-Type", "application/json")

	return app
}

// Call 单次调用, 返回模型的裸文本输出
func (app *BLAnalyzeApp) Call(ctx context.Context, prompt string) (string, error) {
	client := util.GetHttpClient()

	body := map[string]any{
		"input":      map[string]string{"prompt": prompt},
		"parameters": map[string]any{},
	}
	res, err := client.Req(ctx, consts.Post, app.url, app.header, body)
	if err != nil {
		return "", err
	}
	output, ok := res["output"].(map[string]any)
	if !ok {
		return "", nil
	}
	text, _ := output["text"].(string)
	return text, nil
}

// Close 释放相关资源
// 暂时没有需要释放的资源
func (app *BLAnalyzeApp) Close() error {
	return nil
}
