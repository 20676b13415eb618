package def

import (
	"context"
)

// DB 数据库层接口
type DB interface {
	Do(ctx context.Context, msg Message) Reply
	Close()
}

// Executor 指令执行器接口
type Executor interface {
	Exec(cmd *Command) Reply
	Close()
}

// DataStore 数据存储接口，实现需保证并发安全
type DataStore interface {
	// Set 写入 key，expireAt 为毫秒时间戳，0 表示永不过期；返回是否为新 key
	Set(key, value string, expireAt int64) bool
	// Get 读取 key，已过期的 key 在此时被惰性删除
	Get(key string) (string, bool)
	Delete(key string) bool
	Len() int
	Close()
}
