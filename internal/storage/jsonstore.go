// internal/storage/jsonstore.go
//
// 提供 JSON 快照 (Snapshot) 的序列化與反序列化實作。
// 採「原子寫入」策略：先寫入同目錄下唯一命名的暫存檔，再以 rename() 取代原檔，
// 避免中途寫入失敗導致檔案損壞；並行的寫入各自使用不同暫存檔。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONStore 將快照存在單一 JSON 檔案；mu 序列化同一個 store 的 Save。
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore 建立 JSON 快照儲存；path 不可為空，所在目錄不存在時會自動建立。
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, errors.New("json store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("json store: create directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) Load(_ context.Context) (Snapshot, error) {
	snap, err := LoadSnapshot(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, err
}

func (s *JSONStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveSnapshot(s.path, snap)
}

func (s *JSONStore) Close() error { return nil }

// LoadSnapshot 讀取指定路徑的 JSON 快照，並解析成 Snapshot 結構。
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

// SaveSnapshot 將 Snapshot 序列化為 JSON 檔案，並採原子方式寫入。
// 流程：
//  1. 設定 Meta.Storage 與當前時間戳。
//  2. 在同目錄以 os.CreateTemp 建立唯一的暫存檔並寫入。
//  3. 寫入完成後使用 os.Rename() 取代正式檔案；任何失敗都會移除暫存檔。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "json_snapshot"
	snap.Meta.Timestamp = time.Now()

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// 使用縮排格式輸出，方便人類閱讀
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	// 原子替換
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
