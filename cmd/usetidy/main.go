package main

import (
	"os"

	"usetidy/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
