package parser

// frameScanner 判断缓冲区中是否已有一个完整报文，不分配内存。
// 扫描进度在多次读取之间保留，已确认的部分不会重复扫描。
type frameScanner struct {
	pos     int   // 已确认的偏移
	pending []int // 每层未结束数组剩余的元素个数
	started bool
}

// scan 从上次的进度继续，报文完整时返回其结束位置。
// 数据不足返回 ErrIncomplete，进度停在最后一个完整元素之后。
func (s *frameScanner) scan(buf []byte) (int, error) {
	for !s.started || len(s.pending) > 0 {
		if s.pos >= len(buf) {
			return 0, ErrIncomplete
		}

		switch buf[s.pos] {
		case '*':
			if len(s.pending) >= MaxDepth {
				return 0, protocolErrorf(s.pos, "array nested too deep")
			}
			length, next, err := readLength(buf, s.pos+1, MaxArrayLen)
			if err != nil {
				return 0, err
			}
			s.pos, s.started = next, true
			if length == 0 {
				s.elementDone()
			} else {
				s.pending = append(s.pending, length)
			}

		case '$':
			length, next, err := readLength(buf, s.pos+1, MaxBulkLen)
			if err != nil {
				return 0, err
			}
			end := next + length
			if end+2 > len(buf) {
				return 0, ErrIncomplete
			}
			if buf[end] != '\r' || buf[end+1] != '\n' {
				return 0, protocolErrorf(end, "bulk string not terminated by CRLF")
			}
			s.pos, s.started = end+2, true
			s.elementDone()

		default:
			return 0, protocolErrorf(s.pos, "unexpected leading byte %q", buf[s.pos])
		}
	}

	return s.pos, nil
}

// elementDone 一个元素结束，依次关闭已经收齐的数组
func (s *frameScanner) elementDone() {
	for len(s.pending) > 0 {
		top := len(s.pending) - 1
		s.pending[top]--
		if s.pending[top] > 0 {
			return
		}
		s.pending = s.pending[:top]
	}
}

// reset 开始扫描下一个报文，偏移相对于新的起点
func (s *frameScanner) reset() {
	s.pos = 0
	s.pending = s.pending[:0]
	s.started = false
}
