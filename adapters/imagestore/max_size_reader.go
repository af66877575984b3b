package imagestore

import (
	"fmt"
	"io"
)

var ErrReachLimitType *ReachLimitError

// ReachLimitError 表示上傳內容超過了允許的最大長度
type ReachLimitError struct {
	MaxBytes int64
}

func (e *ReachLimitError) Error() string {
	return fmt.Sprintf("reach limit of %s", FormatBytes(e.MaxBytes))
}

// NewMaxSizeReader 包裝 r，最多只允許讀出 maxSize 個位元組；
// 來源還有更多資料時回傳 ReachLimitError。
func NewMaxSizeReader(r io.Reader, maxSize int64) io.Reader {
	return &maxSizeReader{reader: r, limit: maxSize, remain: maxSize}
}

type maxSizeReader struct {
	reader io.Reader
	limit  int64 // 限制的總長度
	remain int64 // 還可以讀取的長度
}

func (r *maxSizeReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	// 只需要多讀 1 個位元組就能判斷是否超過限制
	if int64(len(p)) > r.remain+1 {
		p = p[:r.remain+1]
	}
	n, err = r.reader.Read(p)
	if int64(n) <= r.remain {
		r.remain -= int64(n)
		return n, err
	}
	// 多讀到的那 1 個位元組丟棄
	n = int(r.remain)
	r.remain = 0
	return n, &ReachLimitError{r.limit}
}
