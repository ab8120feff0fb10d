// internal/storage/store.go

package storage

import (
	"context"
	"errors"
	"fmt"
)

const SnapshotVersion = 2

var (
	// ErrNoSnapshot 代表尚未有任何快照（首次啟動）。
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrUnknownDriver 代表設定了不支援的儲存後端。
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store 為快照儲存後端的共同介面。
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Open 依 driver 名稱建立儲存後端："json"、"sqlite" 或 "memory"。
func Open(driver, path string) (Store, error) {
	switch driver {
	case "json":
		s, err := NewJSONStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(context.Background()); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "memory":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// NopStore 不保存任何資料；Load 永遠回傳 ErrNoSnapshot。
type NopStore struct{}

func (NopStore) Load(context.Context) (Snapshot, error) { return Snapshot{}, ErrNoSnapshot }
func (NopStore) Save(context.Context, Snapshot) error   { return nil }
func (NopStore) Close() error                           { return nil }
