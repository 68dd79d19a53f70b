package main

import (
	"os"

	"github.com/bulk-reviewer/brv/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
