package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"serptrack/internal/cmd"
)

// Version information set by build flags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cmd.SetVersionInfo(Version, BuildTime)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
