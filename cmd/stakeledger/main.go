package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stakeledger/internal/cli"

	"github.com/joho/godotenv"
)

func init() {
	_ = godotenv.Load()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "stakeledger:", err)
		os.Exit(1)
	}
}
