package config

import (
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"os"

	"github.com/zeromicro/go-zero/core/service"

	"github.com/zeromicro/go-zero/core/conf"
)

var config *Config

type SMTP struct {
	Username string
	Password string
	Host     string
	Port     int
	Alert    string
}

type Config struct {
	service.ServiceConf
	ListenOn string
	State    string
	Auth     Auth
	Mongo    struct {
		URL string
		DB  string
	}
	Cache          cache.CacheConf
	Redis          *redis.RedisConf
	RabbitMQ       RabbitMQ
	SMTP           SMTP
	BaiLianAnalyze BaiLianAnalyze
	BaiLianReport  BaiLianReport
	LiveKit        LiveKit
	Analyze        Analyze
	Escalate       Escalate
}

type Auth struct {
	SecretKey    string
	PublicKey    string
	AccessExpire int64
}

type RabbitMQ struct {
	Url string
}

// BaiLianAnalyze 增量分析模型应用配置
type BaiLianAnalyze struct {
	AppId  string
	ApiKey string
}

// BaiLianReport 通话总结模型应用配置
type BaiLianReport struct {
	AppId  string
	ApiKey string
}

// LiveKit 电话外呼与录音服务配置, 任一项为空则整体降级为模拟模式
type LiveKit struct {
	Url       string
	ApiKey    string
	ApiSecret string
	TrunkId   string
}

// Analyze 增量分析的超时配置
type Analyze struct {
	// TimeoutMs 单次模型调用的超时时间
	TimeoutMs int64 `json:",default=30000"`
}

// Escalate 转介外呼的节奏配置
// 原型里接通等待是写死的5秒, 这里全部做成配置项, 测试时注入更短的值
type Escalate struct {
	// ConnectWaitMs 外呼振铃后等待接通的时间
	ConnectWaitMs int64 `json:",default=5000"`
	// AnswerTimeoutMs 整个外呼动作的兜底超时, 超时记为no_answer
	AnswerTimeoutMs int64 `json:",default=30000"`
	// SimulateWaitMs 模拟模式下每步状态迁移的间隔
	SimulateWaitMs int64 `json:",default=1500"`
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return c, nil
}

func GetConfig() *Config {
	return config
}
