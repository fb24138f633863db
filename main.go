package main

import "github.com/speedrun-hq/speedrun-e2e/cli"

func main() {
	cli.Execute()
}
