package pool

import (
	"runtime/debug"
	"strings"

	"github.com/panjf2000/ants/v2"

	"github.com/lovelydayss/miniredis/config"
	"github.com/lovelydayss/miniredis/log"
)

// Pool 协程池，只承载连接处理任务，每个连接占用一个 worker
type Pool struct {
	pool *ants.Pool
}

// NewPool 初始化，池满时 Submit 阻塞等待而不是丢弃任务
func NewPool(conf *config.GlobalConfig, logger log.Logger) (*Pool, error) {
	p, err := ants.NewPool(conf.Server.PoolSize, ants.WithPanicHandler(
		func(i interface{}) {
			stackInfo := strings.Replace(string(debug.Stack()), "\n", "", -1)
			logger.Errorf("[pool]recover info: %v, stack info: %s", i, stackInfo)
		}))
	if err != nil {
		return nil, err
	}

	return &Pool{pool: p}, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Running 正在运行的任务数
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release 关闭协程池
func (p *Pool) Release() {
	p.pool.Release()
}
