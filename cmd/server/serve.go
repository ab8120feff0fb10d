package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledger/internal/bank"
	"ledger/internal/config"
	"ledger/internal/server"
	"ledger/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(v *viper.Viper, cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("storage", "json", "storage driver (json, sqlite, memory)")
	cmd.Flags().String("data", "data.json", "snapshot path for the json/sqlite driver")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("storage.driver", cmd.Flags().Lookup("storage"))
	_ = v.BindPFlag("storage.path", cmd.Flags().Lookup("data"))
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := log.Default()

	store, err := storage.Open(cfg.Storage.Driver, config.ExpandPath(cfg.Storage.Path))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	// 嘗試從上次的快照載入資料，若不存在則以空銀行啟動
	b := bank.NewBank(cfg.Fees)
	snap, err := store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		logger.Info("no snapshot found, starting empty", "driver", cfg.Storage.Driver)
	case err != nil:
		return fmt.Errorf("failed to load snapshot: %w", err)
	default:
		if err := b.Restore(snap); err != nil {
			return fmt.Errorf("failed to restore snapshot: %w", err)
		}
		logger.Info("restored snapshot", "accounts", len(snap.Accounts), "driver", cfg.Storage.Driver)
	}

	// persist：將當前銀行狀態快照存入儲存後端。
	// 取快照與寫入在同一把鎖內完成，較晚的寫入一定帶著較新的狀態。
	var persistMu sync.Mutex
	persist := func() error {
		persistMu.Lock()
		defer persistMu.Unlock()
		return store.Save(context.Background(), b.Snapshot())
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewServer(b, persist, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger server running", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal, saving snapshot")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
		}
	}

	// 安全結束前保存狀態
	if err := persist(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
