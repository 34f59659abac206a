package provider

import (
	"github.com/google/wire"
	"github.com/xh-polaris/village-senior/biz/application/service"
	"github.com/xh-polaris/village-senior/biz/domain/analyze"
	"github.com/xh-polaris/village-senior/biz/domain/escalate"
	"github.com/xh-polaris/village-senior/biz/domain/hub"
	"github.com/xh-polaris/village-senior/biz/domain/model"
	"github.com/xh-polaris/village-senior/biz/domain/model/bailian"
	"github.com/xh-polaris/village-senior/biz/domain/model/livekit"
	"github.com/xh-polaris/village-senior/biz/domain/session"
	"github.com/xh-polaris/village-senior/biz/domain/village"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/mapper/call"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config            *config.Config
	CallService       service.CallService
	CallRecordService service.CallRecordService
	MonitorService    service.MonitorService
}

func Get() *Provider {
	return provider
}

// NewTelephonyApp 电话服务, 配置不全时为nil, 下游全程降级
func NewTelephonyApp(c *config.Config) model.TelephonyApp {
	return livekit.NewLkApp(&c.LiveKit)
}

// NewAnalyzeApp 增量分析模型应用, 未配置时为nil, 分析器降级为只记转写
func NewAnalyzeApp(c *config.Config) model.AnalyzeApp {
	if c.BaiLianAnalyze.AppId == "" || c.BaiLianAnalyze.ApiKey == "" {
		return nil
	}
	return bailian.NewBLAnalyzeApp(c.BaiLianAnalyze.AppId, c.BaiLianAnalyze.ApiKey)
}

func NewEscalateConfig(c *config.Config) *config.Escalate {
	return &c.Escalate
}

func NewAnalyzeConfig(c *config.Config) *config.Analyze {
	return &c.Analyze
}

var ApplicationSet = wire.NewSet(
	service.CallServiceSet,
	service.CallRecordServiceSet,
	service.MonitorServiceSet,
)

var DomainSet = wire.NewSet(
	session.NewStore,
	hub.NewHub,
	village.NewRegistry,
	escalate.NewDispatcher,
	analyze.NewAnalyzer,
	NewTelephonyApp,
	NewAnalyzeApp,
)

var InfrastructureSet = wire.NewSet(
	config.NewConfig,
	NewEscalateConfig,
	NewAnalyzeConfig,
	call.NewMongoMapper,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfrastructureSet,
)
