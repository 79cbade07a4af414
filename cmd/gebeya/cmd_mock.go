package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mestawet/gebeya/config"
	"github.com/mestawet/gebeya/internal/mockapi"
	"github.com/mestawet/gebeya/pkg/logger"
)

var mockServerAddr string

func init() {
	mockServerCmd.Flags().StringVar(&mockServerAddr, "addr", "", "listen address (defaults to :APP_PORT)")
}

// gebeya mock-server — run the in-memory backend for local development.
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory Gebeya backend",
	Long: "Runs the full backend API in memory, seeded with the demo admin account.\n" +
		"Point the client at it with GEBEYA_API_URL, e.g.\n\n" +
		"  GEBEYA_API_URL=http://localhost:8080 gebeya products:sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := mockServerAddr
		if addr == "" {
			addr = ":" + config.AppPort()
		}

		logger.Info("mock backend listening",
			"addr", addr,
			"admin_email", mockapi.AdminEmail,
		)
		fmt.Printf("Mock backend on %s (admin: %s / %s)\n", addr, mockapi.AdminEmail, mockapi.AdminPassword)
		return http.ListenAndServe(addr, mockapi.New().Router())
	},
}
