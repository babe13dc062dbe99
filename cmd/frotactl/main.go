// Command frotactl previews masks, validates documents, lists and imports
// back-office records from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/frota/internal/cli"
	_ "github.com/JonMunkholm/frota/internal/core/entities" // Register all entities
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
