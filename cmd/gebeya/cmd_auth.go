package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mestawet/gebeya/pkg/auth"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// gebeya register <first-name> <last-name> <email> <password>
var registerCmd = &cobra.Command{
	Use:   "register <first-name> <last-name> <email> <password>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		user, token, err := client.Register(cmd.Context(), args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		if err := auth.SaveToken(kvstore.Default(), token); err != nil {
			return err
		}
		s.RegisterUser(user)

		fmt.Printf("Welcome, %s (id %d)\n", user.Name, user.ID)
		return nil
	},
}

// gebeya login <email> <password>
var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		user, token, err := client.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := auth.SaveToken(kvstore.Default(), token); err != nil {
			return err
		}
		s.RegisterUser(user)

		fmt.Printf("Signed in as %s (%s)\n", user.Name, user.Role)
		return nil
	},
}

// gebeya admin:login <email> <password>
var adminLoginCmd = &cobra.Command{
	Use:   "admin:login <email> <password>",
	Short: "Sign in with an admin account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client := boot()

		user, token, err := client.SignInAdmin(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := auth.SaveToken(kvstore.Default(), token); err != nil {
			return err
		}
		s.RegisterUser(user)

		fmt.Printf("Signed in as %s (admin)\n", user.Name)
		return nil
	},
}

// gebeya logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the session and stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()
		s.SignOut()
		auth.ClearToken(kvstore.Default())
		fmt.Println("Signed out.")
		return nil
	},
}

// gebeya whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session user",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := boot()

		user, ok := s.CurrentUser()
		if !ok {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s <%s> — role: %s\n", user.Name, user.Email, user.Role)
		if s.IsVendorApproved(user.ID) {
			fmt.Println("Vendor application: approved")
		} else if app, ok := s.GetVendorApplication(user.ID); ok {
			fmt.Printf("Vendor application: %s\n", app.Status)
		}
		return nil
	},
}
