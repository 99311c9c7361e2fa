package main

import (
	"os"

	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/provider"
)

func main() {
	defer provider.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		provider.Cleanup()
		os.Exit(1)
	}
}
