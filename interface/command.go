package def

import (
	"strings"
)

const (
	CmdTypeEcho CmdType = "ECHO"
	CmdTypePing CmdType = "PING"
	CmdTypeSet  CmdType = "SET"
	CmdTypeGet  CmdType = "GET"

	// 不在支持范围内的指令
	CmdTypeUnknown CmdType = ""
)

// CmdType 指令类型，取值即协议中的指令名称（大小写敏感）
type CmdType string

// 统一化指令名称为小写，用于错误信息与监控标签
func (c CmdType) String() string {
	if c == CmdTypeUnknown {
		return "unknown"
	}
	return strings.ToLower(string(c))
}

// Command 指令封装类型
type Command struct {
	Cmd  CmdType
	Name string // 请求中的原始指令名称
	Args []string
}

// Argc 参数个数
func (c *Command) Argc() int {
	return len(c.Args)
}
