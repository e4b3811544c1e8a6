package main

import "github.com/dyike/StockLens/internal/cli"

func main() {
	cli.Run()
}
