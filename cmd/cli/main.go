package main

import (
	"context"
	"log"
	"os"

	"github.com/jadupage/storefront/internal/buildinfo"
	"github.com/jadupage/storefront/internal/client/cli"
	"github.com/jadupage/storefront/internal/client/config"
	"github.com/jadupage/storefront/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg, logging.NewDefault())
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
