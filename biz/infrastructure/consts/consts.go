package consts

// 数据库相关
const (
	CreateTime = "create_time"
	StartTime  = "start_time"
)

// Post http
const (
	Post = "POST"
)

// ws命令
const (
	SubscribeCmd   = 0
	Ping           = 1
	UnsubscribeCmd = 2
	EndCmd         = -1
)

// 通话状态
const (
	CallRinging    = "ringing"
	CallInProgress = "in_progress"
	CallCompleted  = "completed"
	CallFailed     = "failed"
	CallNoAnswer   = "no_answer"
)

// 转介动作状态
const (
	ActionPending   = "pending"
	ActionCalling   = "calling"
	ActionRinging   = "ringing"
	ActionConnected = "connected"
	ActionFailed    = "failed"
	ActionNoAnswer  = "no_answer"
)

// 转介紧急程度
const (
	UrgencyImmediate = "immediate"
	UrgencySoon      = "soon"
	UrgencyRoutine   = "routine"
)

// 事件类型, 同一通话内按发布顺序先进先出
const (
	EventSessionStarted         = "session_started"
	EventStatusChanged          = "status_changed"
	EventTranscriptAppended     = "transcript_appended"
	EventWellbeingUpdated       = "wellbeing_updated"
	EventConcernDetected        = "concern_detected"
	EventProfileFactAdded       = "profile_fact_added"
	EventEscalationStarted      = "escalation_started"
	EventEscalationStatusChange = "escalation_status_changed"
	EventSessionEnded           = "session_ended"
)

// 发言角色
const (
	SpeakerElder   = "elder"
	SpeakerAgent   = "agent"
	SpeakerVillage = "village_member"
)
