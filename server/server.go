package server

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lovelydayss/miniredis/config"
	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/lib/pool"
	"github.com/lovelydayss/miniredis/log"
	"github.com/lovelydayss/miniredis/metrics"
)

// ErrServerRunning Serve 只能调用一次
var ErrServerRunning = errors.New("server already running")

// 进程退出信号
var exitWords = []os.Signal{syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT}

// Server 服务器结构体定义
// Server 层负责监听与接收连接，每个连接交给 handler 在协程池中处理
type Server struct {
	runOnce  sync.Once
	stopOnce sync.Once
	wg       sync.WaitGroup

	conf     *config.GlobalConfig
	handler  def.Handler       // 指令分发层接口
	pool     *pool.Pool        // 协程池
	exporter *metrics.Exporter // 监控
	logger   log.Logger        // 日志组件
	stopc    chan struct{}
}

// NewServer 创建新服务器
func NewServer(conf *config.GlobalConfig, handler def.Handler, pool *pool.Pool, exporter *metrics.Exporter, logger log.Logger) *Server {
	return &Server{
		conf:     conf,
		handler:  handler,
		pool:     pool,
		exporter: exporter,
		logger:   logger,
		stopc:    make(chan struct{}),
	}
}

// Serve 监听配置中的地址并处理连接，直到收到退出信号或 Stop
func (s *Server) Serve() error {
	listener, err := net.Listen("tcp", s.conf.Address())
	if err != nil {
		return err
	}
	return s.ServeListener(listener)
}

// ServeListener 在给定 listener 上处理连接，返回时 listener 已关闭
func (s *Server) ServeListener(listener net.Listener) error {
	err := ErrServerRunning
	s.runOnce.Do(func() {
		err = s.serve(listener)
	})
	return err
}

// Stop 结束服务器循环
func (s *Server) Stop() {

	// 这里使用close(chan{}) 配合 select <-chan{} 实现优雅退出
	s.stopOnce.Do(func() {
		close(s.stopc)
	})

}

func (s *Server) serve(listener net.Listener) error {
	defer s.pool.Release()

	if err := s.handler.Start(); err != nil {
		_ = listener.Close()
		return err
	}

	metricsListener, err := s.listenMetrics()
	if err != nil {
		_ = listener.Close()
		s.handler.Close()
		return err
	}

	// 监听进程信号
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, exitWords...)
	defer signal.Stop(sigc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 常驻任务不占用连接协程池，池中每个连接只占一个 worker
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		s.waitForExit(ctx, sigc)
		cancel()
		s.shutdown(listener, metricsListener)
	}()

	err = s.listenAndServe(ctx, listener)

	// accept 出错时同样走关闭流程
	cancel()
	<-closed

	// 等待所有连接处理结束
	s.wg.Wait()
	_ = s.logger.Sync()
	return err
}

func (s *Server) listenMetrics() (net.Listener, error) {
	if s.conf.Metrics.Address == "" {
		return nil, nil
	}

	metricsListener, err := net.Listen("tcp", s.conf.Metrics.Address)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := s.exporter.Serve(metricsListener); err != nil {
			s.logger.Errorf("[server]metrics exporter err: %s", err.Error())
		}
	}()

	return metricsListener, nil
}

func (s *Server) waitForExit(ctx context.Context, sigc <-chan os.Signal) {
	select {
	case sig := <-sigc:
		s.logger.Warnf("[server]received signal %s", sig.String())
	case <-s.stopc:
		s.logger.Warnf("[server]stop requested")
	case <-ctx.Done():
	}
}

func (s *Server) shutdown(listener, metricsListener net.Listener) {
	s.logger.Warnf("[server]server closing, running tasks: %d", s.pool.Running())
	s.handler.Close()
	if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Errorf("[server]server close listener err: %s", err.Error())
	}

	if metricsListener == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.exporter.Shutdown(ctx); err != nil {
		s.logger.Errorf("[server]metrics exporter shutdown err: %s", err.Error())
	}
}

// listenAndServe 接收连接，每个连接提交到协程池处理
func (s *Server) listenAndServe(ctx context.Context, listener net.Listener) error {
	s.logger.Infof("[server]server listening on %s", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			// 主动关闭
			if ctx.Err() != nil {
				return nil
			}

			// 超时类错误，忽略
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(5 * time.Millisecond)
				continue
			}

			// 意外错误，则停止运行
			s.logger.Errorf("[server]accept err: %s", err.Error())
			return err
		}

		s.wg.Add(1)
		if err := s.pool.Submit(func() {
			defer s.wg.Done()

			// hanlder.Handle 执行实际任务处理
			s.handler.Handle(ctx, conn)
		}); err != nil {
			s.wg.Done()
			_ = conn.Close()
			s.logger.Errorf("[server]submit conn err: %s", err.Error())
		}
	}
}
