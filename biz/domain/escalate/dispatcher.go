package escalate

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
)

// Dispatcher 负责对选定的响应者发起转介外呼并推进其状态机
// pending → calling → ringing → {connected, failed, no_answer}
// 电话服务不可用时走模拟路径: pending → calling → connected,
// 下游看到的状态机形状与真实外呼一致
// 任何失败都收敛为动作的终态, 不向调用方抛出
type Dispatcher struct {
	store *session.Store
	hub   *hub.Hub
	// tel 为nil时进入模拟模式
	tel model.TelephonyApp

	// connectWait 振铃后等待接通的时间
	connectWait time.Duration
	// answerTimeout 整个外呼的兜底超时
	answerTimeout time.Duration
	// simulateWait 模拟模式每步间隔
	simulateWait time.Duration
}

func NewDispatcher(store *session.Store, h *hub.Hub, tel model.TelephonyApp, c *config.Escalate) *Dispatcher {
	return &Dispatcher{
		store:         store,
		hub:           h,
		tel:           tel,
		connectWait:   time.Duration(c.ConnectWaitMs) * time.Millisecond,
		answerTimeout: time.Duration(c.AnswerTimeoutMs) * time.Millisecond,
		simulateWait:  time.Duration(c.SimulateWaitMs) * time.Millisecond,
	}
}

// statusEvent 状态迁移事件的负载
type statusEvent struct {
	ActionId string `json:"action_id"`
	Status   string `json:"status"`
	Outcome  string `json:"outcome,omitempty"`
}

// Dispatch 创建转介动作并异步推进
// 同步部分只做登记(pending)和事件广播, 返回动作快照
func (d *Dispatcher) Dispatch(callId string, recipient *village.VillageMember, concernId, actionType, reason, urgency string) *session.EscalationAction {
	action := &session.EscalationAction{
		Id:          uuid.NewString(),
		CallId:      callId,
		Recipient:   recipient,
		ConcernId:   concernId,
		ActionType:  actionType,
		Reason:      reason,
		Urgency:     urgency,
		Status:      consts.ActionPending,
		InitiatedAt: time.Now(),
	}
	if err := d.store.AppendAction(callId, action); err != nil {
		// 会话已经不在了, 动作直接作废
		log.Error("append action err: ", err)
		return nil
	}
	if concernId != "" {
		_ = d.store.MarkConcernActioned(callId, concernId, action.Id, false)
	}

	// 快照必须在后台推进开始之前取, 之后action本体归注册表独占管理,
	// 广播和返回值都只暴露快照
	snapshot := *action
	d.hub.Publish(callId, consts.EventEscalationStarted, &snapshot)
	d.publishStatus(callId, action.Id, consts.ActionPending, "")

	gopool.Go(func() {
		d.run(action)
	})
	return &snapshot
}

// run 推进单个动作直到终态
func (d *Dispatcher) run(action *session.EscalationAction) {
	// 没有联系方式, 不发起呼叫直接失败
	if action.Recipient == nil || action.Recipient.Phone == "" {
		d.transition(action, consts.ActionFailed, "响应者没有登记联系电话")
		return
	}

	if d.tel == nil {
		d.simulate(action)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.answerTimeout)
	defer cancel()

	d.transition(action, consts.ActionCalling, "")
	resp, err := d.tel.PlaceCall(ctx, &model.PlaceCallReq{
		To:       action.Recipient.Phone,
		RoomName: fmt.Sprintf("escalation-%s", action.Id),
		Identity: fmt.Sprintf("village-%s", action.Recipient.Id),
		Name:     action.Recipient.Name,
	})
	if err != nil {
		d.transition(action, consts.ActionFailed, fmt.Sprintf("外呼失败: %s", err.Error()))
		return
	}

	d.transition(action, consts.ActionRinging, "")
	select {
	case <-time.After(d.connectWait):
		d.transition(action, consts.ActionConnected,
			fmt.Sprintf("已接通 %s (%s), participant: %s", action.Recipient.Name, action.Recipient.Relationship, resp.ParticipantId))
		d.resolveConcern(action)
	case <-ctx.Done():
		d.transition(action, consts.ActionNoAnswer, "超时无人接听")
	}
}

// simulate 模拟路径, 只为下游保住协议形状
func (d *Dispatcher) simulate(action *session.EscalationAction) {
	d.transition(action, consts.ActionCalling, "")
	time.Sleep(d.simulateWait)
	d.transition(action, consts.ActionConnected,
		fmt.Sprintf("模拟线路已接通 %s, 已转达关怀请求", action.Recipient.Name))
	d.resolveConcern(action)
}

// transition 落库并广播一次状态迁移
// 状态只写进注册表, 不回写action本体: 这个指针已经被会话持有,
// 锁外改字段会和读侧的快照拷贝竞争
func (d *Dispatcher) transition(action *session.EscalationAction, status, outcome string) {
	if err := d.store.UpdateActionStatus(action.CallId, action.Id, status, outcome); err != nil {
		log.Error("update action status err: ", err)
	}
	d.publishStatus(action.CallId, action.Id, status, outcome)
}

// resolveConcern 接通后把关联的风险信号标记为已处理
func (d *Dispatcher) resolveConcern(action *session.EscalationAction) {
	if action.ConcernId == "" {
		return
	}
	_ = d.store.MarkConcernActioned(action.CallId, action.ConcernId, "", true)
}

func (d *Dispatcher) publishStatus(callId, actionId, status, outcome string) {
	d.hub.Publish(callId, consts.EventEscalationStatusChange, &statusEvent{
		ActionId: actionId,
		Status:   status,
		Outcome:  outcome,
	})
}
