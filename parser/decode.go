package parser

import (
	"errors"
	"fmt"

	def "github.com/lovelydayss/miniredis/interface"
)

const (
	MaxBulkLen  = 512 << 20 // 单个 bulk 上限
	MaxArrayLen = 1 << 20   // 单个数组元素个数上限
	MaxDepth    = 32        // 数组嵌套层数上限
)

// ErrIncomplete 缓冲区中的报文不完整，需要继续读取
var ErrIncomplete = errors.New("incomplete frame")

// ProtocolError 报文格式错误，连接无法继续解析
type ProtocolError struct {
	Offset int
	Msg    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func protocolErrorf(offset int, format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

type decoder func(buf []byte, pos, depth int) (def.Message, int, error)

// 首字节到解析函数的映射
var decoders map[byte]decoder

func init() {
	decoders = map[byte]decoder{
		'*': decodeArray,
		'$': decodeBulk,
	}
}

// Decode 从 buf[pos] 开始解析一个完整报文，返回报文以及其后的位置。
// 读取越过 buf 末尾时返回 ErrIncomplete，buf 不会被修改。
func Decode(buf []byte, pos int) (def.Message, int, error) {
	return decode(buf, pos, 0)
}

func decode(buf []byte, pos, depth int) (def.Message, int, error) {
	if pos >= len(buf) {
		return nil, pos, ErrIncomplete
	}

	decodeFunc, ok := decoders[buf[pos]]
	if !ok {
		return nil, pos, protocolErrorf(pos, "unexpected leading byte %q", buf[pos])
	}

	return decodeFunc(buf, pos, depth)
}

// *<n>\r\n 后接 n 个报文
func decodeArray(buf []byte, pos, depth int) (def.Message, int, error) {
	if depth >= MaxDepth {
		return nil, pos, protocolErrorf(pos, "array nested too deep")
	}

	length, next, err := readLength(buf, pos+1, MaxArrayLen)
	if err != nil {
		return nil, pos, err
	}

	items := make([]def.Message, 0, min(length, 64))
	for i := 0; i < length; i++ {
		var item def.Message
		if item, next, err = decode(buf, next, depth+1); err != nil {
			return nil, pos, err
		}
		items = append(items, item)
	}

	return def.NewMultiBulkReply(items), next, nil
}

// $<len>\r\n<data>\r\n
func decodeBulk(buf []byte, pos, _ int) (def.Message, int, error) {
	length, next, err := readLength(buf, pos+1, MaxBulkLen)
	if err != nil {
		return nil, pos, err
	}

	end := next + length
	if end+2 > len(buf) {
		return nil, pos, ErrIncomplete
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return nil, pos, protocolErrorf(end, "bulk string not terminated by CRLF")
	}

	// 拷贝一份，调用方的缓冲区会被复用
	data := make([]byte, length)
	copy(data, buf[next:end])
	return def.NewBulkReply(data), end + 2, nil
}

// readLength 读取以 \r\n 结尾的无符号十进制长度，返回长度与 \r\n 之后的位置
func readLength(buf []byte, pos, limit int) (int, int, error) {
	n := 0
	for i := pos; ; i++ {
		if i >= len(buf) {
			return 0, pos, ErrIncomplete
		}

		c := buf[i]
		if c == '\r' {
			if i == pos {
				return 0, pos, protocolErrorf(pos, "empty length")
			}
			if i+1 >= len(buf) {
				return 0, pos, ErrIncomplete
			}
			if buf[i+1] != '\n' {
				return 0, pos, protocolErrorf(i+1, "expected LF after CR")
			}
			return n, i + 2, nil
		}

		if c < '0' || c > '9' {
			return 0, pos, protocolErrorf(i, "invalid length byte %q", c)
		}
		n = n*10 + int(c-'0')
		if n > limit {
			return 0, pos, protocolErrorf(pos, "length exceeds %d", limit)
		}
	}
}
