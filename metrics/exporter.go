package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/lovelydayss/miniredis/log"
)

// Exporter 以 http 形式暴露 /metrics
type Exporter struct {
	server *http.Server
	logger log.Logger
}

// NewExporter 初始化
func NewExporter(m *Metrics, logger log.Logger) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &Exporter{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Serve 在 listener 上提供服务，阻塞直到 Shutdown
func (e *Exporter) Serve(listener net.Listener) error {
	e.logger.Infof("[metrics]exporter listening on %s", listener.Addr().String())
	if err := e.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 关闭
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
