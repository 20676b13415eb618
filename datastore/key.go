package datastore

// Key 表中的键，相等性只由 Name 决定
type Key struct {
	Name     string
	Hash     uint32
	ExpireAt int64 // 毫秒时间戳，0 表示永不过期
}

// NewKey 初始化，预先计算哈希
func NewKey(name string) Key {
	return Key{Name: name, Hash: Hash(name)}
}

// NewKeyWithExpire 初始化带过期时间的 key
func NewKeyWithExpire(name string, expireAt int64) Key {
	k := NewKey(name)
	k.ExpireAt = expireAt
	return k
}

// Expired 在 now 时刻是否已过期
func (k Key) Expired(now int64) bool {
	return k.ExpireAt > 0 && k.ExpireAt < now
}
