package dto

type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Event 推送给订阅端的事件信封
type Event struct {
	Type      string `json:"type"`
	CallId    string `json:"call_id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
