package cmd

// ListCallRecordReq 分页查询历史通话记录
type ListCallRecordReq struct {
	Paging
	ElderId string `json:"elder_id" query:"elder_id"`
}

type ListCallRecordResp struct {
	Code    int           `json:"code"`
	Msg     string        `json:"msg"`
	Records []*CallRecord `json:"records"`
	Total   int64         `json:"total"`
}

// CallRecord 落库后的通话记录
type CallRecord struct {
	ID              string    `json:"id,omitempty"`
	CallId          string    `json:"call_id"`
	ElderId         string    `json:"elder_id"`
	ElderName       string    `json:"elder_name"`
	Status          string    `json:"status"`
	Dialogs         []*Dialog `json:"dialogs"`
	Report          *Report   `json:"report"`
	StartTime       int64     `json:"start_time"`
	EndTime         int64     `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
}

type Dialog struct {
	Speaker string `json:"speaker"`
	Name    string `json:"name,omitempty"`
	Text    string `json:"text"`
}

type Report struct {
	Overview   string   `json:"overview"`
	Keywords   []string `json:"keywords"`
	Grade      string   `json:"grade"`
	Suggestion []string `json:"suggestion"`
}
