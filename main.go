package main

import (
	"flag"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/xh-polaris/village-senior/biz/adaptor/router"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/mq"
	"github.com/xh-polaris/village-senior/provider"
)

var mode = flag.String("mode", "server", "server或consumer, consumer只跑落库消费")

func main() {
	flag.Parse()

	// 消费者进程独立部署, 只依赖配置和mq
	if *mode == "consumer" {
		if _, err := config.NewConfig(); err != nil {
			panic(err)
		}
		mq.Consume()
		return
	}

	provider.Init()
	c := provider.Get().Config

	tracer, cfg := hertztracing.NewServerTracer()
	h := server.Default(server.WithHostPorts(c.ListenOn), tracer)
	h.Use(hertztracing.ServerMiddleware(cfg))
	router.Register(h)
	h.Spin()
}
