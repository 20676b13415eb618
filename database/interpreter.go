package database

import (
	"errors"
	"fmt"

	def "github.com/lovelydayss/miniredis/interface"
)

// ErrMalformedRequest 请求不是以 bulk 开头的非空数组
var ErrMalformedRequest = errors.New("malformed request")

// 指令名称到类型的映射，大小写敏感
var cmdTypes = map[string]def.CmdType{
	string(def.CmdTypeEcho): def.CmdTypeEcho,
	string(def.CmdTypePing): def.CmdTypePing,
	string(def.CmdTypeSet):  def.CmdTypeSet,
	string(def.CmdTypeGet):  def.CmdTypeGet,
}

// Build 将解析得到的报文转换为指令。
// 第一个元素为指令名称，其后的 bulk 元素依次作为参数，嵌套数组被跳过。
func Build(msg def.Message) (*def.Command, error) {
	var items []def.Message
	switch m := msg.(type) {
	case *def.MultiBulkReply:
		items = m.Items
	case *def.BulkReply:
		return nil, fmt.Errorf("%w: expected array, got bulk string", ErrMalformedRequest)
	default:
		return nil, fmt.Errorf("%w: unexpected message %T", ErrMalformedRequest, msg)
	}

	if len(items) < 1 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformedRequest)
	}

	name, ok := items[0].(*def.BulkReply)
	if !ok {
		return nil, fmt.Errorf("%w: command name must be a bulk string", ErrMalformedRequest)
	}

	cmd := &def.Command{
		Cmd:  lookupCmdType(string(name.Arg)),
		Name: string(name.Arg),
		Args: make([]string, 0, len(items)-1),
	}

	for _, item := range items[1:] {
		switch arg := item.(type) {
		case *def.BulkReply:
			cmd.Args = append(cmd.Args, string(arg.Arg))
		case *def.MultiBulkReply:
			// 嵌套数组不作为参数
		}
	}

	return cmd, nil
}

func lookupCmdType(name string) def.CmdType {
	if cmdType, ok := cmdTypes[name]; ok {
		return cmdType
	}
	return def.CmdTypeUnknown
}
