package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tonhe/promenade/cmd"
)

func main() {
	// A .env beside the binary may set PROMETHEUS_URL and friends.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
