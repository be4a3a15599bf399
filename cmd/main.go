package main

import (
	"os"

	"github.com/soundprediction/retrievals/cmd/retrievals"
)

func main() {
	if err := retrievals.Execute(); err != nil {
		os.Exit(1)
	}
}
