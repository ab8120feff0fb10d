// internal/storage/sqlite.go
//
// SQLite 快照儲存：與 JSONStore 相同的 Snapshot 結構，改存進資料表。
// 每次 Save 在單一 SQL transaction 內整份替換，確保讀到的永遠是完整快照。
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore 以 SQLite 保存快照。
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore 開啟（或建立）SQLite 資料庫；":memory:" 可用於測試。
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 單一連線：SQLite 無法受惠於多連線，且 :memory: 資料庫綁定在連線上
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load 讀回最後一次 Save 的快照；從未保存過則回傳 ErrNoSnapshot。
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	meta, err := s.readMeta(ctx)
	if err != nil {
		return snap, err
	}
	if len(meta) == 0 {
		return snap, ErrNoSnapshot
	}
	snap.Meta = Meta{Storage: "sqlite", Note: meta["note"]}
	if snap.NextID, err = strconv.ParseInt(meta["next_id"], 10, 64); err != nil {
		return snap, fmt.Errorf("invalid next_id %q: %w", meta["next_id"], err)
	}
	if snap.Meta.Version, err = strconv.Atoi(meta["version"]); err != nil {
		return snap, fmt.Errorf("invalid version %q: %w", meta["version"], err)
	}
	if snap.Meta.Timestamp, err = time.Parse(time.RFC3339Nano, meta["saved_at"]); err != nil {
		return snap, fmt.Errorf("invalid saved_at %q: %w", meta["saved_at"], err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, overdraft_fee, management_fee FROM accounts ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var pa PersistAccount
		if err := rows.Scan(&pa.ID, &pa.Name, &pa.Settings.OverdraftFee, &pa.Settings.ManagementFee); err != nil {
			return snap, fmt.Errorf("failed to scan account: %w", err)
		}
		index[pa.ID] = len(snap.Accounts)
		snap.Accounts = append(snap.Accounts, pa)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	txRows, err := s.db.QueryContext(ctx,
		`SELECT account_id, type, amount, date FROM transactions ORDER BY account_id, seq`)
	if err != nil {
		return snap, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var (
			accountID, date string
			pt              PersistTransaction
		)
		if err := txRows.Scan(&accountID, &pt.Type, &pt.Amount, &date); err != nil {
			return snap, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if pt.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return snap, fmt.Errorf("invalid transaction date %q: %w", date, err)
		}
		i, ok := index[accountID]
		if !ok {
			return snap, fmt.Errorf("transaction references unknown account %q", accountID)
		}
		snap.Accounts[i].Transactions = append(snap.Accounts[i].Transactions, pt)
	}
	return snap, txRows.Err()
}

func (s *SQLiteStore) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Save 以單一 SQL transaction 整份替換既有快照。
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := saveTx(ctx, tx, snap); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	log.Debug("Saved snapshot", "backend", "sqlite", "accounts", len(snap.Accounts))
	return nil
}

func saveTx(ctx context.Context, tx *sql.Tx, snap Snapshot) error {
	for _, table := range []string{"transactions", "accounts", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"next_id":  strconv.FormatInt(snap.NextID, 10),
		"version":  strconv.Itoa(snap.Meta.Version),
		"note":     snap.Meta.Note,
		"saved_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to save snapshot meta %s: %w", k, err)
		}
	}

	accStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accounts (id, name, overdraft_fee, management_fee, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare account insert: %w", err)
	}
	defer accStmt.Close()

	txnStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (account_id, seq, type, amount, date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer txnStmt.Close()

	for pos, pa := range snap.Accounts {
		if _, err := accStmt.ExecContext(ctx, pa.ID, pa.Name, pa.Settings.OverdraftFee, pa.Settings.ManagementFee, pos); err != nil {
			return fmt.Errorf("failed to save account %s: %w", pa.ID, err)
		}
		for seq, pt := range pa.Transactions {
			if _, err := txnStmt.ExecContext(ctx, pa.ID, seq, pt.Type, pt.Amount, pt.Date.Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("failed to save transaction %d of account %s: %w", seq, pa.ID, err)
			}
		}
	}
	return nil
}
