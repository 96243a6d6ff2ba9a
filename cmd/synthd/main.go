package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; values only seed the SYNTHD_* environment lookups.
	_ = godotenv.Load()
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
