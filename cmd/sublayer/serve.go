package main

import (
	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/sublayer/server"
)

var serverPort string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Load the layers and serve their sublayer state over HTTP",
	PreRunE: initLayers,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := conf.Webserver.Hostname + conf.Webserver.Port
		if serverPort != "" {
			port = serverPort
		}
		return server.New(layers).ListenAndServe(port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serverPort, "port", "p", "", "address to listen on, overrides the config")
}
