package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Store 把圖片存放在本機檔案系統的 root 目錄底下
type Store struct {
	root string
}

// NewStore 建立一個新的 Store，root 不存在時會自動建立
func NewStore(root string) (*Store, error) {
	const op = "disk.NewStore"
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create root directory %s, err=%w", op, root, err)
	}
	return &Store{root: root}, nil
}

// Root 回傳儲存根目錄
func (s *Store) Root() string {
	return s.root
}

// FullPath 回傳相對路徑在檔案系統上的實際位置
func (s *Store) FullPath(path string) string {
	return filepath.Join(s.root, path)
}

// Save 將內容寫入 path，目的資料夾不存在時會先建立。
// 先寫入暫存檔再 rename，讀者不會看到寫到一半的檔案。
func (s *Store) Save(_ context.Context, path, _ string, content []byte) error {
	const op = "disk.Store.Save"
	fullPath := s.FullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerm); err != nil {
		return fmt.Errorf("[%s] Fail to create folder, err=%w", op, err)
	}

	tmpPath := fullPath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("[%s] Fail to create temp file, err=%w", op, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("[%s] Fail to write file, err=%w", op, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("[%s] Fail to sync file, err=%w", op, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("[%s] Fail to close file, err=%w", op, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("[%s] Fail to rename temp file, err=%w", op, err)
	}
	return nil
}

// Remove 刪除 path，檔案不存在時直接返回 nil
func (s *Store) Remove(_ context.Context, path string) error {
	const op = "disk.Store.Remove"
	err := os.Remove(s.FullPath(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[%s] Fail to remove %s, err=%w", op, path, err)
	}
	return nil
}
