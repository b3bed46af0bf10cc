package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

const pingTimeout = 30 * time.Second

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured API key works",
		RunE:  runPing,
	}
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	key := a.cfg.Gemini.APIKey
	fmt.Println("APIキーの最初の7文字:", key[:min(7, len(key))])
	fmt.Println("APIキーの長さ:", len(key))

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	reply, err := a.client.GenerateOnce(ctx, "こんにちは", "")
	if err != nil {
		fmt.Println("❌ エラー:", err)
		return err
	}
	fmt.Println("✅ 成功！APIキーは有効です")
	fmt.Println("レスポンス:", reply)
	return nil
}
