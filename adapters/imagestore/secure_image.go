package imagestore

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// AllowedExtensions 定義了允許上傳的圖片副檔名，順序即錯誤訊息中列出的順序
var AllowedExtensions = []string{"jpeg", "jpg", "png", "bmp", "webp", "ico"}

// ExtensionMIMETypes 定義了副檔名對應的 MIME 類型，寫入物件儲存時作為 Content-Type
var ExtensionMIMETypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"ico":  "image/x-icon",
}

// ExtractExtension 取出檔名最後一個 "." 之後的字串並轉成小寫；
// 沒有 "." 時整個檔名都會被當成副檔名。
func ExtractExtension(filename string) string {
	return strings.ToLower(filename[strings.LastIndex(filename, ".")+1:])
}

// CheckSecureImageAndGetMIMEType 檢查給定的副檔名是否為允許的圖片類型，並返回對應的 MIME 類型
func CheckSecureImageAndGetMIMEType(ext string) (bool, string) {
	if !lo.Contains(AllowedExtensions, ext) {
		return false, ""
	}
	return true, ExtensionMIMETypes[ext]
}

// generatedNamePattern 對應 Upload 產生的檔名格式
var generatedNamePattern = regexp.MustCompile(`^[0-9a-f]{20}\.(` + strings.Join(AllowedExtensions, "|") + `)$`)

// IsGeneratedFilename 判斷 name 是否為 Upload 產生的檔名
func IsGeneratedFilename(name string) bool {
	return generatedNamePattern.MatchString(name)
}
