package imagestore

import (
	"context"
	"io"
)

// Storage 定義了圖片實際落地的儲存層，path 一律是相對於儲存根目錄的路徑
type Storage interface {
	// Save 寫入完整內容，目的資料夾不存在時需要自行建立
	Save(ctx context.Context, path, contentType string, content []byte) error
	// Remove 刪除指定路徑，路徑不存在時不回傳錯誤
	Remove(ctx context.Context, path string) error
}

// File 代表一個上傳中的檔案
type File interface {
	Filename() string
	Open() (io.ReadCloser, error)
}
