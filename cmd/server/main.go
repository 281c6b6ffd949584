package main

import (
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "oecddash",
		Short:         "OECD greenhouse gas dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML config file (defaults apply when empty)")
	root.AddCommand(serveCmd(), renderCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
