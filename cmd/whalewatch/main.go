package main

import "mempool-whale-alerts/internal/cli"

func main() {
	cli.Execute()
}
