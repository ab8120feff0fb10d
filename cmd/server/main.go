// cmd/server/main.go

// 本服務將帳本核心包裝成 RESTful API：建立帳戶、提交交易、查詢餘額與交易紀錄、調整費用設定。
// 此檔案負責 CLI 與設定初始化；serve 子命令組裝 bank、storage、server 並啟動 HTTP 伺服器。

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledger/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		cfg     *config.Config
		v       = viper.New()
	)

	root := &cobra.Command{
		Use:          "ledger",
		Short:        "In-memory ledger accounts over HTTP",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(v, cfgFile); err != nil {
				return err
			}
			if _, err = config.NewLogger(os.Stderr, cfg.Log); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/ledger/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json, logfmt)")
	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(serveCmd(v, func() *config.Config { return cfg }))
	root.AddCommand(versionCmd())
	return root
}

// versionCmd 不需要設定：以空的 PersistentPreRunE 取代 root 的設定載入。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
