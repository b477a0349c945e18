package main

import "github.com/ykhdr/hashbench/internal/cli"

func main() {
	cli.Execute()
}
