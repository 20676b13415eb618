package datastore

import (
	"sync"
)

// KVStore 进程内唯一的键值存储，所有连接共享。
// 一把互斥锁保护整张表，扩容会重建底层数组，读写不能交错。
type KVStore struct {
	mu    sync.Mutex
	table *Table
}

// NewKVStore 初始化 KVStore
func NewKVStore() *KVStore {
	return &KVStore{table: NewTable()}
}

// Set 写入 key，expireAt 为毫秒时间戳，0 表示永不过期
func (k *KVStore) Set(key, value string, expireAt int64) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.Set(NewKeyWithExpire(key, expireAt), value)
}

// Get 读取 key
func (k *KVStore) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.Get(NewKey(key))
}

// Delete 删除 key
func (k *KVStore) Delete(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.Delete(NewKey(key))
}

// Len 存活 key 数
func (k *KVStore) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.Len()
}

// Capacity 哈希表容量
func (k *KVStore) Capacity() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.Capacity()
}

// Close 释放全部数据
func (k *KVStore) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.table = NewTable()
}
