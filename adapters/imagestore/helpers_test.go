package imagestore_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"imagehost/models"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestDB 在暫存資料夾建立一個 SQLite 資料庫，migrate 為 false 時不建立資料表
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "images.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, db.AutoMigrate(&models.Image{}))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fakeStorage 記錄所有寫入的內容，並可注入錯誤
type fakeStorage struct {
	mu        sync.Mutex
	saved     map[string][]byte
	saveCalls int
	saveErr   error
	removeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, path, _ string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[path] = content
	return nil
}

func (s *fakeStorage) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.saved, path)
	return nil
}

func (s *fakeStorage) SaveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCalls
}

// failingFile 模擬讀取上傳內容時發生錯誤
type failingFile struct {
	name string
	err  error
}

func (f failingFile) Filename() string {
	return f.name
}

func (f failingFile) Open() (io.ReadCloser, error) {
	return nil, f.err
}
