package main

import (
	"os"

	"github.com/rogersnm/taskmanager/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
