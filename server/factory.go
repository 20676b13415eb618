package server

import (
	"go.uber.org/dig"

	"github.com/lovelydayss/miniredis/config"
	"github.com/lovelydayss/miniredis/database"
	"github.com/lovelydayss/miniredis/datastore"
	"github.com/lovelydayss/miniredis/handler"
	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/lib/pool"
	"github.com/lovelydayss/miniredis/log"
	"github.com/lovelydayss/miniredis/metrics"
	"github.com/lovelydayss/miniredis/parser"
)

type provider struct {
	constructor interface{}
	opts        []dig.ProvideOption
}

// 业务实现方法的构造函数
var providers = []provider{

	/**
	   基础组件
	**/
	// 日志
	{constructor: log.NewLogger},
	// 协程池
	{constructor: pool.NewPool},

	/**
	   存储引擎
	**/
	// 存储介质，同时作为监控的数据来源
	{constructor: datastore.NewKVStore, opts: []dig.ProvideOption{
		dig.As(new(def.DataStore), new(metrics.StoreStats)),
	}},
	// 监控
	{constructor: metrics.NewMetrics},
	{constructor: metrics.NewExporter},
	// 执行器
	{constructor: database.NewDBExecutor},
	// 触发器
	{constructor: database.NewDBTrigger},

	/**
	   逻辑处理层
	**/
	// 协议解析
	{constructor: parser.NewParser},
	// 指令处理
	{constructor: handler.NewHandler},

	/**
	   服务端
	**/
	{constructor: NewServer},
}

// ConstructServer 最顶层构造
func ConstructServer(conf *config.GlobalConfig) (*Server, error) {

	container := dig.New()
	if err := container.Provide(func() *config.GlobalConfig { return conf }); err != nil {
		return nil, err
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor, p.opts...); err != nil {
			return nil, err
		}
	}

	var s *Server
	if err := container.Invoke(func(_s *Server) {
		s = _s
	}); err != nil {
		return nil, err
	}

	return s, nil
}
