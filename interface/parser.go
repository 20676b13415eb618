package def

import (
	"context"
	"errors"
	"io"
	"net"
)

// Droplet 解析结果，Message 与 Err 有且仅有一个非空
type Droplet struct {
	Message Message
	Err     error
}

// Terminated 对端关闭或连接已失效，无需再回包
func (d *Droplet) Terminated() bool {
	if d.Err == nil {
		return false
	}
	return errors.Is(d.Err, io.EOF) || errors.Is(d.Err, io.ErrUnexpectedEOF) || errors.Is(d.Err, net.ErrClosed)
}

// Parser 协议解析器
type Parser interface {
	ParseStream(ctx context.Context, reader io.Reader) <-chan *Droplet
}
