package database

import (
	"math"
	"strconv"
	"strings"

	def "github.com/lovelydayss/miniredis/interface"
)

// ECHO value
func (e *DBExecutor) echo(cmd *def.Command) def.Reply {
	if cmd.Argc() != 1 {
		return def.NewArgNumErrReply(cmd.Cmd)
	}
	return def.NewBulkReply([]byte(cmd.Args[0]))
}

// PING，参数忽略
func (e *DBExecutor) ping(_ *def.Command) def.Reply {
	return def.NewPongReply()
}

// SET key value [PX milliseconds]
//
// 只识别恰好 4 个参数且第三个为 PX 的形式，其余多余参数一律忽略，按普通 SET 处理。
func (e *DBExecutor) set(cmd *def.Command) def.Reply {
	args := cmd.Args
	if len(args) < 2 {
		return def.NewArgNumErrReply(cmd.Cmd)
	}

	var expireAt int64
	if len(args) == 4 && strings.EqualFold(args[2], "PX") {
		ttl, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return def.NewIntErrReply()
		}

		now := e.now()
		if ttl <= 0 || ttl > math.MaxInt64-now {
			return def.NewErrReply("ERR invalid expire time in 'set' command")
		}
		expireAt = now + ttl
	}

	e.dataStore.Set(args[0], args[1], expireAt)
	return def.NewOKReply()
}

// GET key
func (e *DBExecutor) get(cmd *def.Command) def.Reply {
	if cmd.Argc() < 1 {
		return def.NewArgNumErrReply(cmd.Cmd)
	}

	value, ok := e.dataStore.Get(cmd.Args[0])
	if !ok {
		return def.NewNullBulkReply()
	}
	return def.NewBulkReply([]byte(value))
}
