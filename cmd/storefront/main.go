package main

import (
	"context"
	"fmt"
	"os"

	"mumsale-backend/cmd/storefront/commands"
	"mumsale-backend/lib/telemetry"
)

func main() {
	baseUrl, ok := os.LookupEnv("MUMS_API_URL")
	if !ok {
		fmt.Println("You should specify the Apps Script deployment url of the order backend in the environment variable MUMS_API_URL.")
		os.Exit(1)
	}
	commands.BaseUrl = baseUrl

	ctx := context.Background()
	telemetry.InitSlog(false)
	telemetry.SetupFromEnv(ctx, "storefront")
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
