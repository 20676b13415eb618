package datastore

import (
	"hash/fnv"
)

// Hash 32 位 FNV-1a，仅用于定位桶，不要求抗碰撞
func Hash(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}
