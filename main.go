package main

import (
	"os"

	"github.com/hartono/hr-screener/cmd"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
