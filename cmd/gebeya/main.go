package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mestawet/gebeya/config"
	"github.com/mestawet/gebeya/internal/api"
	"github.com/mestawet/gebeya/internal/store"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gebeya",
	Short: "Gebeya — multi-vendor marketplace client",
	Long:  "Gebeya is the command-line client for the Gebeya marketplace: browse the catalog, manage your cart, apply as a vendor and check out.",
}

func init() {
	// Session
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(adminLoginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Shopping
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productsSyncCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(cartAddCmd)
	rootCmd.AddCommand(cartRemoveCmd)
	rootCmd.AddCommand(cartQtyCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)

	// Vendor workflow
	rootCmd.AddCommand(vendorApplyCmd)
	rootCmd.AddCommand(vendorApplicationsCmd)
	rootCmd.AddCommand(vendorStatusCmd)
	rootCmd.AddCommand(vendorApproveCmd)
	rootCmd.AddCommand(productAddCmd)

	// Tooling
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(resetCmd)
}

// boot wires the persistence driver, the API client and the store.
// Every command goes through here so they all share one state envelope.
func boot() (*store.Store, *api.Client) {
	kvstore.Connect()
	kv := kvstore.Use(config.StoreDriver())
	client := api.NewClient(kv)
	return store.New(kv, store.WithFetcher(client)), client
}
