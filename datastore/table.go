package datastore

import (
	"github.com/lovelydayss/miniredis/lib"
)

const (
	defaultCapacity = 8

	// 负载因子 3/4，用整数比较避免浮点
	maxLoadNum = 3
	maxLoadDen = 4
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotTombstone
	slotOccupied
)

type entry struct {
	state slotState
	key   Key
	value string
}

// Table 开放寻址 + 线性探测的哈希表，非并发安全，由 KVStore 加锁使用。
// count 为 Occupied 与 Tombstone 槽位之和，仅在扩容重建时回收墓碑。
type Table struct {
	entries []entry
	count   int
	live    int

	now func() int64
}

// NewTable 初始化，容量在首次写入时分配
func NewTable() *Table {
	return &Table{now: lib.NowMs}
}

// Capacity 槽位总数
func (t *Table) Capacity() int {
	return len(t.entries)
}

// Count Occupied 与 Tombstone 槽位数
func (t *Table) Count() int {
	return t.count
}

// Len 存活 key 数，未被读取到的过期 key 仍计入
func (t *Table) Len() int {
	return t.live
}

// Set 写入或覆盖 key，返回该槽位此前是否未被占用
func (t *Table) Set(key Key, value string) bool {
	if (t.count+1)*maxLoadDen > len(t.entries)*maxLoadNum {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := &t.entries[findSlot(t.entries, key)]
	isNewKey := e.state != slotOccupied
	if e.state == slotEmpty {
		t.count++
	}
	if isNewKey {
		t.live++
	}

	*e = entry{state: slotOccupied, key: key, value: value}
	return isNewKey
}

// Get 读取 key，过期的 key 在这里被置为墓碑
func (t *Table) Get(key Key) (string, bool) {
	if t.count == 0 {
		return "", false
	}

	e := &t.entries[findSlot(t.entries, key)]
	if e.state != slotOccupied {
		return "", false
	}

	if e.key.Expired(t.now()) {
		t.bury(e)
		return "", false
	}

	return e.value, true
}

// Delete 删除 key，返回 key 是否存在且未过期
func (t *Table) Delete(key Key) bool {
	if t.count == 0 {
		return false
	}

	e := &t.entries[findSlot(t.entries, key)]
	if e.state != slotOccupied {
		return false
	}

	// 已过期的 key 视为不存在，顺便置为墓碑
	expired := e.key.Expired(t.now())
	t.bury(e)
	return !expired
}

func (t *Table) bury(e *entry) {
	*e = entry{state: slotTombstone}
	t.live--
}

// adjustCapacity 分配新数组并重新探测所有存活 entry，墓碑在此丢弃
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)

	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.state != slotOccupied {
			continue
		}
		entries[findSlot(entries, e.key)] = *e
		t.count++
	}

	t.live = t.count
	t.entries = entries
}

func growCapacity(capacity int) int {
	if capacity < defaultCapacity {
		return defaultCapacity
	}
	return capacity * 2
}

// findSlot 返回 key 所在槽位；key 不存在时返回探测路径上的第一个墓碑，
// 没有墓碑则返回遇到的空槽。负载因子不超过 3/4 保证一定存在空槽。
func findSlot(entries []entry, key Key) int {
	mask := uint32(len(entries) - 1)
	index := key.Hash & mask
	tombstone := -1

	for {
		e := &entries[index]
		switch e.state {
		case slotEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return int(index)
		case slotTombstone:
			if tombstone == -1 {
				tombstone = int(index)
			}
		case slotOccupied:
			if e.key.Name == key.Name {
				return int(index)
			}
		}

		index = (index + 1) & mask
	}
}
