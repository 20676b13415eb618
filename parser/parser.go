package parser

import (
	"context"
	"errors"
	"io"

	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/log"
)

const (
	readChunkSize  = 4 << 10
	MaxQueryBufLen = 1 << 30 // 未解析完成的数据上限
)

// Parser 协议命令解析器具体实现
type Parser struct {
	logger log.Logger
}

// NewParser 初始化
func NewParser(logger log.Logger) def.Parser {
	return &Parser{logger: logger}
}

// ParseStream 连接转换成 stream channel 形式，异步执行。
// 解析协程与连接同生命周期，不占用连接协程池。
// 出错后 channel 发出携带 Err 的 droplet 并关闭。
func (p *Parser) ParseStream(ctx context.Context, reader io.Reader) <-chan *def.Droplet {
	ch := make(chan *def.Droplet, 1)
	go p.parse(ctx, reader, ch)
	return ch
}

// 实际解析，读到的数据累积在 buf 中，直到能解析出完整报文
func (p *Parser) parse(ctx context.Context, reader io.Reader, ch chan<- *def.Droplet) {
	defer close(ch)

	var (
		buf     []byte
		scanner frameScanner
		chunk   = make([]byte, readChunkSize)
	)

	for {
		n, readErr := reader.Read(chunk)
		buf = append(buf, chunk[:n]...)

		var ok bool
		if buf, ok = p.drain(ctx, buf, &scanner, ch); !ok {
			return
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) && len(buf) > 0 {
				readErr = io.ErrUnexpectedEOF
			}
			send(ctx, ch, &def.Droplet{Err: readErr})
			return
		}

		if len(buf) > MaxQueryBufLen {
			send(ctx, ch, &def.Droplet{Err: protocolErrorf(0, "query buffer exceeds %d bytes", MaxQueryBufLen)})
			return
		}
	}
}

// drain 发送 buf 中所有完整报文，返回剩余数据。
// 只有 scanner 确认报文完整后才真正解码，不完整的报文不会被反复解码。
func (p *Parser) drain(ctx context.Context, buf []byte, scanner *frameScanner, ch chan<- *def.Droplet) ([]byte, bool) {
	start := 0
	for start < len(buf) {
		end, err := scanner.scan(buf[start:])
		if errors.Is(err, ErrIncomplete) {
			break
		}
		if err == nil {
			var msg def.Message
			msg, _, err = Decode(buf[start:start+end], 0)
			if err == nil {
				start += end
				scanner.reset()
				if !send(ctx, ch, &def.Droplet{Message: msg}) {
					return nil, false
				}
				continue
			}
		}

		p.logger.Debugf("[parser]decode err: %s", err.Error())
		send(ctx, ch, &def.Droplet{Err: err})
		return nil, false
	}

	// scanner 的进度相对于剩余数据的起点，整体前移后仍然有效
	return append(buf[:0], buf[start:]...), true
}

func send(ctx context.Context, ch chan<- *def.Droplet, droplet *def.Droplet) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- droplet:
		return true
	}
}
