package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/xh-polaris/village-senior/biz/adaptor/controller/call"
	"github.com/xh-polaris/village-senior/biz/adaptor/controller/monitor"
)

func Register(r *server.Hertz) {
	root := r.Group("/", _rootMw()...)
	{
		_call := root.Group("/call")
		_call.POST("/start", call.StartCall)
		_call.POST("/transcript", call.Transcript)
		_call.POST("/status", call.SetStatus)
		_call.POST("/end", call.EndCall)
		_call.GET("/get", call.GetCall)
		_call.GET("/active", call.ListActive)
		_call.GET("/history/list", call.ListCallRecord)
	}
	{
		root.GET("/monitor", append(_monitorMw(), monitor.Monitor)...)
	}
}
