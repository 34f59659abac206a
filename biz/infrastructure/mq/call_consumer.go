package mq

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/xh-polaris/village-senior/biz/domain"
	"github.com/xh-polaris/village-senior/biz/domain/model/bailian"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/mapper/call"
	"golang.org/x/net/context"
	"os"
	"os/signal"
	"syscall"
)

// RecordConsumer 消费通话结束消息, 生成总结并落库
// 内存注册表是权威状态, 这里只是最终一致的镜像
type RecordConsumer struct {
	conn   *amqp.Connection
	finish chan struct{}
}

// NewRecordConsumer 创建一个消费者
func NewRecordConsumer() *RecordConsumer {
	return &RecordConsumer{
		conn:   getConn(),
		finish: make(chan struct{}),
	}
}

// Consume 启动消费者
func Consume() {
	consumer := NewRecordConsumer()
	consumer.Start()
}

// Start 开始消费
func (c *RecordConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动消息处理
	gopool.CtxGo(ctx, func() {
		c.consume(ctx)
	})
	// 处理系统信号
	gopool.CtxGo(ctx, func() {
		c.osSignalHandler(ctx)
		c.finish <- struct{}{}
	})

	<-c.finish
}

// 消费信息
func (c *RecordConsumer) consume(ctx context.Context) {
	ch, err := c.conn.Channel()
	if err != nil {
		log.Error("get channel error:", err)
		return
	}
	defer func() { _ = ch.Close() }()
	err = ch.Qos(1, 0, false)
	if err != nil {
		log.Error("set qos error:", err)
		return
	}
	msgs, err := ch.Consume("call_record_village", "record_consumer", false, false, false, false, nil)
	if err != nil {
		log.Error("get consume error:", err)
		return
	}

	for msg := range msgs {
		if err = c.process(ctx, msg); err != nil {
			// 失败时拒绝并重试
			log.Error("处理失败，消息重新入队:", err)
			if err = msg.Nack(false, true); err != nil {
				log.Error("nack失败 ", err)
			}
		} else if err = msg.Ack(false); err != nil {
			log.Error("ack失败 ", err)
		}
	}
}

// osSignalHandler 处理os信号
func (c *RecordConsumer) osSignalHandler(ctx context.Context) {
	log.CtxInfo(ctx, "[osSignalHandler] start")
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	osSignal := <-ch
	log.CtxInfo(ctx, "[osSignalHandler] receive signal:[%v]", osSignal)
}

// recordMsg 通话落库消息体
type recordMsg struct {
	CallId    string `json:"callId"`
	ElderId   string `json:"elderId"`
	ElderName string `json:"elderName"`
	Status    string `json:"status"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
}

// parseRecordMsg 解析消息体
// 字段类型不符或缺少callId时报错, 由消费循环走Nack重试, 不能panic
func parseRecordMsg(body []byte) (*recordMsg, error) {
	var m recordMsg
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m.CallId == "" {
		return nil, fmt.Errorf("消息缺少callId: %s", body)
	}
	return &m, nil
}

// process 实际消费逻辑
func (c *RecordConsumer) process(ctx context.Context, msg amqp.Delivery) error {
	m, err := parseRecordMsg(msg.Body)
	if err != nil {
		return err
	}

	rs := domain.GetRedisHelper()
	lines, err := rs.Load(m.CallId)
	if err != nil {
		return err
	}

	dialogs := make([]*call.Dialog, 0, len(lines))
	for _, line := range lines {
		dialogs = append(dialogs, &call.Dialog{
			Speaker: line.Speaker,
			Name:    line.Name,
			Text:    line.Text,
		})
	}
	record := &call.CallRecord{
		CallId:          m.CallId,
		ElderId:         m.ElderId,
		ElderName:       m.ElderName,
		Status:          m.Status,
		Dialogs:         dialogs,
		StartTime:       time.Unix(m.Start, 0),
		EndTime:         time.Unix(m.End, 0),
		DurationSeconds: m.End - m.Start,
	}

	// 生成通话总结
	summarize(ctx, record)

	// 存储通话记录
	if err = c.store(ctx, record); err != nil {
		return err
	}

	// 从redis中删除
	if err = rs.Remove(m.CallId); err != nil {
		return err
	}
	return nil
}

// summarize 调总结模型, 失败不阻断落库
func summarize(ctx context.Context, record *call.CallRecord) {
	if config.GetConfig().BaiLianReport.AppId == "" {
		return
	}
	reportApp := bailian.GetBLReportApp()
	report, err := reportApp.Call(ctx, buildMsg(record))
	if err != nil || report == nil {
		log.Error("call report error:", err)
		return
	}
	record.Report = &call.Report{
		Overview:   report.Overview,
		Keywords:   report.Keywords,
		Grade:      report.Grade,
		Suggestion: report.Suggestion,
	}
}

// buildMsg 拼接消息
func buildMsg(record *call.CallRecord) string {
	var sb strings.Builder
	for _, d := range record.Dialogs {
		sb.WriteString(d.Speaker)
		sb.WriteString(":")
		sb.WriteString(d.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// store 存储通话记录
func (c *RecordConsumer) store(ctx context.Context, record *call.CallRecord) error {
	mapper := call.GetMongoMapper()
	return mapper.Insert(ctx, record)
}
