package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var client *HttpClient

// HttpClient 是一个简单的 HTTP 客户端
type HttpClient struct {
	Client *http.Client
}

// NewHttpClient 创建一个新的 HttpClient 实例
func NewHttpClient() *HttpClient {
	return &HttpClient{
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// GetHttpClient 获取客户端单例
func GetHttpClient() *HttpClient {
	if client == nil {
		client = NewHttpClient()
	}
	return client
}

// Req 发送 HTTP 请求
func (c *HttpClient) Req(ctx context.Context, method, url string, headers http.Header, body interface{}) (map[string]interface{}, error) {
	resp, err := c.do(ctx, method, url, headers, body)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("关闭请求失败: %v", closeErr)
		}
	}()

	// 检查响应状态码
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_resp, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, response body: %s", resp.StatusCode, _resp)
	}

	// 读取响应
	_resp, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	// 反序列化响应体
	var respMap map[string]interface{}
	if err := json.Unmarshal(_resp, &respMap); err != nil {
		return nil, fmt.Errorf("反序列化响应失败: %w", err)
	}

	return respMap, nil
}

// do 实际执行请求
func (c *HttpClient) do(ctx context.Context, method, url string, headers http.Header, body interface{}) (*http.Response, error) {
	// 将 body 序列化为 JSON
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("请求体序列化失败: %w", err)
	}

	// 创建新的请求
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	// 设置请求头
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	// 发送请求
	resp, err := c.Client.Do(req)

	return resp, err
}
