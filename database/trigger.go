package database

import (
	"context"
	"sync"

	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/log"
	"github.com/lovelydayss/miniredis/metrics"
)

// DBTrigger 触发器，将解析得到的报文转换为指令后交给执行器
type DBTrigger struct {
	once     sync.Once
	executor def.Executor // 下层执行器
	metrics  *metrics.Metrics
	logger   log.Logger
}

// NewDBTrigger 初始化
func NewDBTrigger(executor def.Executor, m *metrics.Metrics, logger log.Logger) def.DB {
	return &DBTrigger{executor: executor, metrics: m, logger: logger}
}

// Do 执行实际指令转换
func (d *DBTrigger) Do(ctx context.Context, msg def.Message) def.Reply {
	if err := ctx.Err(); err != nil {
		return def.NewErrReply("ERR " + err.Error())
	}

	cmd, err := Build(msg)
	if err != nil {
		d.metrics.CommandFailed(metrics.ErrKindMalformed)
		d.logger.Debugf("[database]build command err: %s", err.Error())
		return def.NewErrReply("ERR " + err.Error())
	}

	return d.executor.Exec(cmd)
}

// Close 关闭触发器
func (d *DBTrigger) Close() {
	d.once.Do(d.executor.Close)
}
