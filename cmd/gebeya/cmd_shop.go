package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mestawet/gebeya/pkg/money"
)

// gebeya products — list the cached catalog.
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the cached product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		products := s.ListProducts()
		if len(products) == 0 {
			fmt.Println("Catalog is empty. Run `gebeya products:sync` to fetch it.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tVENDOR")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", p.ID, p.Name, money.Format(p.Price), p.VendorUserID)
		}
		return w.Flush()
	},
}

// gebeya products:sync — replace the cached catalog from the backend.
var productsSyncCmd = &cobra.Command{
	Use:   "products:sync",
	Short: "Fetch the catalog from the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		products, err := client.ListProducts(cmd.Context())
		if err != nil {
			return err
		}
		s.SetProducts(products)

		fmt.Printf("Synced %d products.\n", len(products))
		return nil
	},
}

// gebeya cart — show the cart with line totals.
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		s.RefreshMissingProducts(cmd.Context())
		lines := s.ListCartItems()
		if len(lines) == 0 {
			fmt.Println("Cart is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tTOTAL")
		total := 0.0
		for _, l := range lines {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", l.ID, l.Product.Name, l.Quantity, money.Format(l.LineTotal))
			total += l.LineTotal
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Total: %s\n", money.Format(total))
		return nil
	},
}

// gebeya cart:add <product-id> [quantity]
var cartAddCmd = &cobra.Command{
	Use:   "cart:add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		quantity := 1
		if len(args) == 2 {
			if quantity, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}

		s.AddToCart(productID, quantity)
		fmt.Printf("Cart now holds %d items.\n", s.CartCount())
		return nil
	},
}

// gebeya cart:remove <item-id>
var cartRemoveCmd = &cobra.Command{
	Use:   "cart:remove <item-id>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}
		s.RemoveFromCart(itemID)
		fmt.Printf("Cart now holds %d items.\n", s.CartCount())
		return nil
	},
}

// gebeya cart:qty <item-id> <quantity>
var cartQtyCmd = &cobra.Command{
	Use:   "cart:qty <item-id> <quantity>",
	Short: "Set a cart line's quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		s.SetCartQuantity(itemID, quantity)
		fmt.Printf("Cart now holds %d items.\n", s.CartCount())
		return nil
	},
}

// gebeya checkout
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Turn the cart into an order",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		s.RefreshMissingProducts(cmd.Context())
		order, ok := s.Checkout()
		if !ok {
			fmt.Println("Cart is empty, nothing to check out.")
			return nil
		}
		fmt.Printf("Order %d placed: %s\n", order.ID, money.Format(order.Total))

		// best effort: the local record stands even if the backend is down
		var userID int64
		if user, ok := s.CurrentUser(); ok {
			userID = user.ID
		}
		if _, err := client.CreateOrder(cmd.Context(), userID, order); err != nil {
			fmt.Printf("Warning: order not synced to backend: %v\n", err)
		}
		return nil
	},
}

// gebeya orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List past orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		orders := s.ListOrders()
		if len(orders) == 0 {
			fmt.Println("No orders yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ORDER\tLINES\tTOTAL")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%d\t%s\n", o.ID, len(o.Items), money.Format(o.Total))
		}
		return w.Flush()
	},
}

// gebeya reset
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the session, applications and catalog (cart and orders are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()
		s.ResetAll()
		fmt.Println("State reset.")
		return nil
	},
}
