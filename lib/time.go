package lib

import (
	"time"
)

var nowFunc = time.Now

// NowMs 当前毫秒时间戳
func NowMs() int64 {
	return nowFunc().UnixMilli()
}
