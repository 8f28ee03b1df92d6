package main

import (
	"github.com/workloadhq/insights/internal/cli"
)

func main() {
	cli.Execute()
}
