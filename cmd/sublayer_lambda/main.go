// Command sublayer_lambda serves the sublayer HTTP API from AWS Lambda. The
// config file location is read from the SUBLAYER_CONFIG environment
// variable.
package main

import (
	"context"
	"os"

	"github.com/akrylysov/algnhsa"

	"github.com/atlasdatatech/sublayer/cmd/internal/app"
	"github.com/atlasdatatech/sublayer/config"
	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/server"
)

const (
	EnvConfigPath     = "SUBLAYER_CONFIG"
	DefaultConfigPath = "config.toml"
)

func main() {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}

	conf, err := config.Parse(path)
	if err != nil {
		log.Fatal(err)
	}
	layers, err := app.Setup(context.Background(), conf)
	if err != nil {
		log.Fatal(err)
	}

	algnhsa.ListenAndServe(server.New(layers).Handler(), nil)
}
