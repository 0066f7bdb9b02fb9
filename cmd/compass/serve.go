package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/capabilitycompass/compass/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the capability graph API server",
		Run: func(cmd *cobra.Command, args []string) {
			srv := server.NewServer()
			r := srv.SetupRouter()

			port := srv.Config.Server.Port
			log.Printf("Starting server on port %s", port)
			if err := r.Run(":" + port); err != nil {
				log.Fatal(err)
			}
		},
	}
}
