package main

import (
	"os"

	"github.com/spigell/careermate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
