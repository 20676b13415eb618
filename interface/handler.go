package def

import (
	"context"
	"net"
)

// Handler 指令分发层结构体定义
type Handler interface {

	// 启动
	Start() error

	// 关闭并断开所有连接
	Close()

	// 处理连接，阻塞至连接结束
	Handle(ctx context.Context, conn net.Conn)
}
