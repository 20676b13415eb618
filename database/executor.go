package database

import (
	"sync"

	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/lib"
	"github.com/lovelydayss/miniredis/metrics"
)

//go:generate mockgen -destination=mocks_test.go -package=database github.com/lovelydayss/miniredis/interface DataStore

// DBExecutor 是数据库执行器，负责具体的命令处理。
// 并发安全由 DataStore 保证，Exec 可在各连接协程中直接调用。
type DBExecutor struct {
	once sync.Once

	cmdHandlers map[def.CmdType]func(*def.Command) def.Reply // 指令类型到处理函数映射
	dataStore   def.DataStore                                // 数据引擎层结构
	metrics     *metrics.Metrics

	now func() int64
}

// NewDBExecutor 初始化
func NewDBExecutor(dataStore def.DataStore, m *metrics.Metrics) def.Executor {
	e := DBExecutor{
		dataStore: dataStore,
		metrics:   m,
		now:       lib.NowMs,
	}
	e.cmdHandlers = map[def.CmdType]func(*def.Command) def.Reply{
		def.CmdTypeEcho: e.echo,
		def.CmdTypePing: e.ping,
		def.CmdTypeSet:  e.set,
		def.CmdTypeGet:  e.get,
	}

	return &e
}

// Exec 执行指令，返回回包
func (e *DBExecutor) Exec(cmd *def.Command) def.Reply {
	cmdFunc, ok := e.cmdHandlers[cmd.Cmd] // map 只读，不考虑并发问题
	if !ok {
		e.metrics.CommandFailed(metrics.ErrKindUnknown)
		return def.NewUnknownCmdErrReply(cmd.Name)
	}

	e.metrics.CommandProcessed(cmd.Cmd)
	reply := cmdFunc(cmd)
	if _, failed := reply.(*def.ErrReply); failed {
		e.metrics.CommandFailed(metrics.ErrKindArgs)
	}
	return reply
}

// Close 关闭执行器，释放存储
func (e *DBExecutor) Close() {
	e.once.Do(e.dataStore.Close)
}
