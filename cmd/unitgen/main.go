package main

import (
	"os"

	"github.com/roach88/unitgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
