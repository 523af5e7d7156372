package main

import (
	"os"

	"sellerctl/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
