package main

import "github.com/forPelevin/montager/internal/cli"

func main() {
	cli.Main()
}
