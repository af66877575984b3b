package imagestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"gorm.io/gorm"

	"imagehost/models"
)

// filenameRandomBytes 產生檔名時使用的隨機位元組數，hex 後為 20 個字元
const filenameRandomBytes = 10

// ServiceOptions 定義了 Service 的配置選項
type ServiceOptions struct {
	Logger  *slog.Logger
	MaxSize int64 // 單一檔案的最大位元組數，0 代表不限制
}

type ServiceOption func(*ServiceOptions)

// WithLogger 設定 Service 使用的 logger
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

// WithMaxSize 設定上傳檔案的大小上限
func WithMaxSize(maxSize int64) ServiceOption {
	return func(o *ServiceOptions) {
		o.MaxSize = maxSize
	}
}

// Service 負責圖片的上傳與刪除
type Service struct {
	storage Storage
	host    *url.URL
	options ServiceOptions
	logger  *slog.Logger
}

// NewService 建立一個新的 Service，hostServer 是組合公開 URL 用的 base URL
func NewService(storage Storage, hostServer string, opts ...ServiceOption) (*Service, error) {
	const op = "NewService"
	if storage == nil {
		return nil, fmt.Errorf("[%s] Storage is required", op)
	}
	host, err := url.Parse(hostServer)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse host server, err=%w", op, err)
	}
	if host.Scheme == "" || host.Host == "" {
		return nil, fmt.Errorf("[%s] Host server must be an absolute URL, got=%q", op, hostServer)
	}

	options := ServiceOptions{
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Service{
		storage: storage,
		host:    host,
		options: options,
		logger:  options.Logger.With(slog.String("caller", "ImageService")),
	}, nil
}

// Upload 驗證副檔名後以隨機檔名把圖片存到 folder 底下，
// 在 db 新增一筆圖片紀錄，並回傳可公開存取的 URL。
//
// 副檔名不合法時回傳 FormatNotSupportedError，此時不會有任何寫入。
// 儲存層或資料庫的錯誤會直接往上拋，已寫入的檔案不會被清除。
func (s *Service) Upload(ctx context.Context, file File, folder string, db *gorm.DB) (string, error) {
	const op = "Upload"
	// 檢查副檔名
	ext := ExtractExtension(file.Filename())
	secure, mimeType := CheckSecureImageAndGetMIMEType(ext)
	if !secure {
		return "", &FormatNotSupportedError{Extension: ext}
	}
	// 產生隨機檔名
	filename, err := generateFilename(ext)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to generate filename, err=%w", op, err)
	}
	filePath := filepath.Join(folder, filename)
	// 讀取完整內容後才開始寫入
	content, err := s.readAll(file)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to read uploaded file, err=%w", op, err)
	}
	if err := s.storage.Save(ctx, filePath, mimeType, content); err != nil {
		return "", fmt.Errorf("[%s] Fail to save image, path=%s, err=%w", op, filePath, err)
	}
	publicURL := s.PublicURL(filePath)
	// 在DB紀錄圖片
	record := models.Image{
		ImageName: filename,
		ImageURL:  publicURL,
	}
	tx := db.WithContext(ctx)
	if result := tx.Create(&record); result.Error != nil {
		return "", fmt.Errorf("[%s] Fail to create image record, err=%w", op, result.Error)
	}
	if result := tx.First(&record, record.ID); result.Error != nil {
		return "", fmt.Errorf("[%s] Fail to refresh image record, err=%w", op, result.Error)
	}
	s.logger.Info("Image uploaded",
		slog.String("filename", file.Filename()),
		slog.String("path", filePath),
		slog.Int("size", len(content)),
		slog.Uint64("recordID", uint64(record.ID)),
	)
	return record.ImageURL, nil
}

// Delete 盡力刪除 path 指向的檔案，檔案不存在時視為成功。
// 失敗時會記錄日誌並回傳錯誤，呼叫端可以自行決定是否忽略。
// 資料庫中對應的紀錄不會被刪除。
func (s *Service) Delete(ctx context.Context, path string) error {
	const op = "Delete"
	if err := s.storage.Remove(ctx, path); err != nil {
		s.logger.Warn("Fail to delete image", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("[%s] Fail to delete image, path=%s, err=%w", op, path, err)
	}
	s.logger.Debug("Image deleted", slog.String("path", path))
	return nil
}

// PublicURL 將相對路徑接在 host server 後面，路徑分隔符號一律轉成 "/"
func (s *Service) PublicURL(filePath string) string {
	return s.host.JoinPath(filepath.ToSlash(filePath)).String()
}

func (s *Service) readAll(file File) ([]byte, error) {
	body, err := file.Open()
	if err != nil {
		return nil, err
	}
	var reader io.Reader = body
	if s.options.MaxSize > 0 {
		reader = NewMaxSizeReader(body, s.options.MaxSize)
	}
	content, err := io.ReadAll(reader)
	return content, errors.Join(err, body.Close())
}

func generateFilename(ext string) (string, error) {
	bytes := make([]byte, filenameRandomBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes) + "." + ext, nil
}
