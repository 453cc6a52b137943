// ABOUTME: Entry point for the orion CLI
// ABOUTME: Terminal client for the Orion forum service

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/orion-forum/orion-cli/cmd"
	"github.com/orion-forum/orion-cli/logger"
)

func main() {
	// Optional .env for local development; ignored when absent
	_ = godotenv.Load()

	logger.Init()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
