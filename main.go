package main

import (
	"github.com/joho/godotenv"

	"s3copy/internal/cli"
)

func main() {
	// .env is optional; flags and the real environment still apply without it
	_ = godotenv.Load()

	cli.Execute(cli.RootCmd())
}
