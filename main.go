package main

import (
	"os"

	"repoguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
