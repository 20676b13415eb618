package def

import (
	"strconv"
	"strings"
)

// CRLF 协议行结束符
const CRLF = "\r\n"

const (
	okReplyLine       = "+OK" + CRLF
	pongReplyLine     = "+PONG" + CRLF
	nullBulkReplyLine = "$-1" + CRLF
)

// 错误行中不能出现换行，否则会被对端拆成多个回包
var lineBreakReplacer = strings.NewReplacer("\r", " ", "\n", " ")

// Reply 协议回包接口
type Reply interface {
	ToBytes() []byte
}

// Message 解析得到的请求报文，仅有 MultiBulkReply 与 BulkReply 两种实现
type Message interface {
	Reply
	message()
}

// BulkReply 定长字符串
type BulkReply struct {
	Arg []byte
}

// NewBulkReply 初始化
func NewBulkReply(arg []byte) *BulkReply {
	return &BulkReply{Arg: arg}
}

// Len 字符串长度
func (b *BulkReply) Len() int {
	return len(b.Arg)
}

// ToBytes 编码为 $<len>\r\n<data>\r\n
func (b *BulkReply) ToBytes() []byte {
	buf := make([]byte, 0, len(b.Arg)+16)
	buf = append(buf, '$')
	buf = strconv.AppendInt(buf, int64(len(b.Arg)), 10)
	buf = append(buf, CRLF...)
	buf = append(buf, b.Arg...)
	return append(buf, CRLF...)
}

func (b *BulkReply) message() {}

// MultiBulkReply 数组
type MultiBulkReply struct {
	Items []Message
}

// NewMultiBulkReply 初始化
func NewMultiBulkReply(items []Message) *MultiBulkReply {
	return &MultiBulkReply{Items: items}
}

// NewMultiBulkReplyFromArgs 由字符串参数构造数组，客户端与测试构造请求使用
func NewMultiBulkReplyFromArgs(args ...string) *MultiBulkReply {
	items := make([]Message, 0, len(args))
	for _, arg := range args {
		items = append(items, NewBulkReply([]byte(arg)))
	}
	return NewMultiBulkReply(items)
}

// Len 数组元素个数
func (m *MultiBulkReply) Len() int {
	return len(m.Items)
}

// ToBytes 编码为 *<n>\r\n 后接各元素
func (m *MultiBulkReply) ToBytes() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(m.Items)), 10)
	buf = append(buf, CRLF...)
	for _, item := range m.Items {
		buf = append(buf, item.ToBytes()...)
	}
	return buf
}

func (m *MultiBulkReply) message() {}

type okReply struct{}

// NewOKReply +OK
func NewOKReply() Reply {
	return okReply{}
}

func (okReply) ToBytes() []byte {
	return []byte(okReplyLine)
}

type pongReply struct{}

// NewPongReply +PONG
func NewPongReply() Reply {
	return pongReply{}
}

func (pongReply) ToBytes() []byte {
	return []byte(pongReplyLine)
}

type nullBulkReply struct{}

// NewNullBulkReply $-1
func NewNullBulkReply() Reply {
	return nullBulkReply{}
}

func (nullBulkReply) ToBytes() []byte {
	return []byte(nullBulkReplyLine)
}

// ErrReply 错误回包，同时实现 error
type ErrReply struct {
	Status string
}

// NewErrReply 初始化，status 不含前缀 '-'
func NewErrReply(status string) *ErrReply {
	return &ErrReply{Status: status}
}

// NewUnknownCmdErrReply 未知指令
func NewUnknownCmdErrReply(name string) *ErrReply {
	return NewErrReply("ERR unknown command '" + name + "'")
}

// NewArgNumErrReply 参数个数错误
func NewArgNumErrReply(cmd CmdType) *ErrReply {
	return NewErrReply("ERR wrong number of arguments for '" + cmd.String() + "' command")
}

// NewIntErrReply 数值解析错误
func NewIntErrReply() *ErrReply {
	return NewErrReply("ERR value is not an integer or out of range")
}

// NewProtocolErrReply 协议错误
func NewProtocolErrReply(msg string) *ErrReply {
	return NewErrReply("ERR Protocol error: " + msg)
}

// ToBytes 编码为 -<status>\r\n，status 中的 \r \n 替换为空格
func (e *ErrReply) ToBytes() []byte {
	return []byte("-" + lineBreakReplacer.Replace(e.Status) + CRLF)
}

func (e *ErrReply) Error() string {
	return e.Status
}
