package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"keygate/cmd/internal/client"
)

// Global flags available to all subcommands.
var (
	serverURL string
	tokenFile string
)

// NewRootCmd creates the root command for the keygate client CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "keygatectl",
		Short:         "keygatectl - client for a keygate auth server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5001", "keygate server base URL")
	cmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "path of the local session token file")

	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLogoutCmd())

	return cmd
}

// deps resolves the API client and token store from the global flags.
func deps() (*client.API, *client.FileTokenStore, error) {
	path := tokenFile
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	return client.NewAPI(serverURL, nil), client.NewFileTokenStore(path), nil
}

// cmdContext returns a context cancelled by SIGINT/SIGTERM.
func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func newRegisterCmd() *cobra.Command {
	in := client.RegisterInput{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the issued session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, store, err := deps()
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext(cmd)
			defer cancel()

			token, err := api.Register(ctx, in)
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return fmt.Errorf("registered, but storing the session failed: %w", err)
			}

			cmd.Println("registered and logged in as", in.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().IntVar(&in.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "gender (male|female|other)")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Username, "username", "", "username")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session token and store it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, store, err := deps()
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext(cmd)
			defer cancel()

			token, err := api.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return fmt.Errorf("logged in, but storing the session failed: %w", err)
			}

			cmd.Println("logged in as", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session token is still valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, store, err := deps()
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext(cmd)
			defer cancel()

			guard := client.NewGuard(client.DefaultGuardConfig(), store, api)
			state, err := guard.Resolve(ctx)
			if err != nil {
				return err
			}

			switch state {
			case client.StateValid:
				u := guard.User()
				cmd.Printf("session valid: %s (%s %s)\n", u.Username, u.FirstName, u.LastName)
			default:
				cmd.Println("no valid session; run 'keygatectl login'")
			}
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := deps()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			cmd.Println("logged out")
			return nil
		},
	}
}
