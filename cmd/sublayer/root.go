package main

import (
	"context"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/sublayer/cmd/internal/app"
	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/config"
)

var (
	configFile string

	conf   config.Config
	layers []*composite.Layer
)

var rootCmd = &cobra.Command{
	Use:   "sublayer",
	Short: "sublayer serves the state of dynamic map layers",
	Long: `sublayer loads composite map layers from a config file and
exposes the visibility, opacity and symbology of their sublayers.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.toml", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
}

// initLayers parses the config file and loads its layers.
func initLayers(cmd *cobra.Command, args []string) (err error) {
	conf, err = config.Parse(configFile)
	if err != nil {
		return err
	}
	layers, err = app.Setup(context.Background(), conf)
	return err
}
