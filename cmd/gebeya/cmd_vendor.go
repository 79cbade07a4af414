package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/media"
	"github.com/mestawet/gebeya/pkg/money"
)

// resolveDocument accepts either a URL (passed through) or a local file
// path, which gets uploaded to object storage first.
func resolveDocument(cmd *cobra.Command, userID int64, arg string) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, nil
	}

	content, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", arg, err)
	}
	uploader, err := media.NewUploader(cmd.Context())
	if err != nil {
		return "", err
	}
	return uploader.Upload(cmd.Context(), userID, filepath.Base(arg), content)
}

// gebeya vendor:apply <license> <id-card>
var vendorApplyCmd = &cobra.Command{
	Use:   "vendor:apply <license> <id-card>",
	Short: "Apply to sell on the marketplace (documents are URLs or local files)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		user, ok := s.CurrentUser()
		if !ok {
			return fmt.Errorf("sign in first")
		}

		licenseURL, err := resolveDocument(cmd, user.ID, args[0])
		if err != nil {
			return err
		}
		idCardURL, err := resolveDocument(cmd, user.ID, args[1])
		if err != nil {
			return err
		}

		app, err := client.ApplyVendor(cmd.Context(), user.ID, licenseURL, idCardURL)
		if err != nil {
			// keep the local record even when the backend is unreachable
			fmt.Printf("Warning: application not synced to backend: %v\n", err)
			app = s.ApplyAsVendor(user.ID, licenseURL, idCardURL)
		} else {
			s.ApplyAsVendor(app.UserID, app.LicenseURL, app.IDCardURL)
		}

		fmt.Printf("Application %d submitted (%s).\n", app.ID, app.Status)
		return nil
	},
}

// gebeya vendor:applications — admin view of all applications.
var vendorApplicationsCmd = &cobra.Command{
	Use:   "vendor:applications",
	Short: "List vendor applications (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		apps, err := client.ListVendorApplications(cmd.Context())
		if err != nil {
			fmt.Printf("Warning: backend unavailable, showing cached applications: %v\n", err)
			apps = s.ListVendorApplications()
		}
		if len(apps) == 0 {
			fmt.Println("No applications.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tSTATUS\tLICENSE")
		for _, a := range apps {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", a.ID, a.UserID, a.Status, a.LicenseURL)
		}
		return w.Flush()
	},
}

// gebeya vendor:status <application-id> <status>
var vendorStatusCmd = &cobra.Command{
	Use:   "vendor:status <application-id> <status>",
	Short: "Set an application's status: pending, approved or rejected (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVendorStatus(cmd, args[0], args[1])
	},
}

// gebeya vendor:approve <application-id>
var vendorApproveCmd = &cobra.Command{
	Use:   "vendor:approve <application-id>",
	Short: "Approve a vendor application (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVendorStatus(cmd, args[0], models.StatusApproved)
	},
}

func setVendorStatus(cmd *cobra.Command, idArg, status string) error {
	s, client := boot()

	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid application id %q", idArg)
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("status must be pending, approved or rejected")
	}

	app, err := client.SetVendorStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	s.SetVendorStatus(id, status)

	fmt.Printf("Application %d is now %s.\n", app.ID, app.Status)
	return nil
}

// gebeya product:add <name> <price>
var productAddCmd = &cobra.Command{
	Use:   "product:add <name> <price>",
	Short: "Publish a product (approved vendors)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		if len(args) != 2 {
			return fmt.Errorf("usage: product:add <name> <price>")
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[1])
		}

		user, ok := s.CurrentUser()
		if !ok {
			return fmt.Errorf("sign in first")
		}
		if !s.IsVendorApproved(user.ID) && user.Role != models.RoleAdmin {
			return fmt.Errorf("only approved vendors can publish products")
		}

		product := models.Product{Name: args[0], Price: price, VendorUserID: user.ID}
		created, err := client.CreateProduct(cmd.Context(), product)
		if err != nil {
			fmt.Printf("Warning: product not synced to backend: %v\n", err)
			created = s.AddProduct(product)
		} else {
			s.AddProductToStore(created)
		}

		fmt.Printf("Product %d published at %s.\n", created.ID, money.Format(created.Price))
		return nil
	},
}
