package handler

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/log"
	"github.com/lovelydayss/miniredis/metrics"
	"github.com/lovelydayss/miniredis/parser"
)

//go:generate mockgen -destination=mocks_test.go -package=handler github.com/lovelydayss/miniredis/interface DB

// UnknownErrReplyBytes 执行层没有给出回包时的兜底
var UnknownErrReplyBytes = []byte("-ERR unknown" + def.CRLF)

// Handler 是命令分发的具体实现
type Handler struct {
	sync.Once
	mu     sync.RWMutex
	conns  map[net.Conn]struct{}
	closed atomic.Bool

	db      def.DB
	parser  def.Parser
	metrics *metrics.Metrics
	logger  log.Logger
}

// NewHandler 初始化
func NewHandler(db def.DB, parser def.Parser, m *metrics.Metrics, logger log.Logger) def.Handler {
	return &Handler{
		conns:   make(map[net.Conn]struct{}),
		db:      db,
		parser:  parser,
		metrics: m,
		logger:  logger,
	}
}

// Start 指令分发层启动
func (h *Handler) Start() error {
	if h.closed.Load() {
		return errors.New("handler already closed")
	}
	h.logger.Infof("[handler]handler started")
	return nil
}

// Close 关闭指令分发层，断开所有连接
func (h *Handler) Close() {
	h.Once.Do(func() {
		h.logger.Warnf("[handler]handler closing...")
		h.closed.Store(true)
		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.conns {
			if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				h.logger.Errorf("[handler]close conn err, remote addr: %s, err: %s", conn.RemoteAddr().String(), err.Error())
			}
		}
		h.conns = nil
		h.db.Close()
	})
}

// ConnCount 当前连接数
func (h *Handler) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Handle 处理连接，返回时连接已关闭
func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	h.mu.Lock()
	// 判断 handler 是否已经关闭
	if h.closed.Load() {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}

	// 当前 conn 缓存起来
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	logger := h.logger.With("conn", ulid.Make().String(), "remote", conn.RemoteAddr().String())
	h.metrics.ConnOpened()
	logger.Debugf("[handler]conn accepted")

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()

		_ = conn.Close()
		h.metrics.ConnClosed()
		logger.Debugf("[handler]conn closed")
	}()

	h.handle(ctx, conn, logger)
}

// handle 处理请求，每次读取一个完整请求、执行、回写一个回包
func (h *Handler) handle(ctx context.Context, conn io.ReadWriter, logger log.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := h.parser.ParseStream(ctx, conn)

	for {
		select {
		case <-ctx.Done():
			logger.Warnf("[handler]handle ctx err: %s", ctx.Err().Error())
			return

		// chan 解耦，有指令到达对指令处理
		case droplet, ok := <-stream:
			if !ok {
				return
			}
			if err := h.handleDroplet(ctx, conn, droplet, logger); err != nil {
				return
			}
		}
	}
}

// handleDroplet 处理每一笔指令，返回非空 error 时连接应当关闭
func (h *Handler) handleDroplet(ctx context.Context, conn io.Writer, droplet *def.Droplet, logger log.Logger) error {
	if droplet.Terminated() {
		logger.Debugf("[handler]conn terminated: %s", droplet.Err.Error())
		return droplet.Err
	}

	if droplet.Err != nil {
		// 协议错误先告知对端再断开
		var protocolErr *parser.ProtocolError
		if errors.As(droplet.Err, &protocolErr) {
			h.metrics.CommandFailed(metrics.ErrKindProtocol)
			_, _ = conn.Write(def.NewProtocolErrReply(protocolErr.Msg).ToBytes())
		}
		logger.Errorf("[handler]conn terminated, err: %s", droplet.Err.Error())
		return droplet.Err
	}

	// 调用数据库层进行处理
	replyBytes := UnknownErrReplyBytes
	if reply := h.db.Do(ctx, droplet.Message); reply != nil {
		replyBytes = reply.ToBytes()
	}

	if _, err := conn.Write(replyBytes); err != nil {
		logger.Errorf("[handler]write reply err: %s", err.Error())
		return err
	}
	return nil
}
