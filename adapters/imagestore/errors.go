package imagestore

import (
	"fmt"
	"strings"
)

var ErrFormatNotSupportedType *FormatNotSupportedError

// FormatNotSupportedError 表示上傳檔案的副檔名不在允許清單內，
// 發生在任何 I/O 之前，呼叫端可以直接回報給使用者修正。
type FormatNotSupportedError struct {
	Extension string
}

func (e *FormatNotSupportedError) Error() string {
	return fmt.Sprintf("The uploaded file should be one of: %s", strings.Join(AllowedExtensions, ", "))
}
