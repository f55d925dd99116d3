package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// overridable in tests
var (
	serveFn = Serve
	tokenFn = MintToken
	signFn  = PrintSignature
)

func NewRoot() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "cloudinary-portal",
		Short:        "Backend for browsing and managing a Cloudinary media library",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the INI config file (e.g. app.ini)")

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveFn(cmd.Context(), configPath)
		},
	}

	var (
		userId string
		email  string
		ttl    time.Duration
	)
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tokenFn(cmd.OutOrStdout(), userId, email, ttl)
		},
	}
	tokenCmd.Flags().StringVar(&userId, "user", "", "user id (token subject)")
	tokenCmd.Flags().StringVar(&email, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	var (
		folder       string
		resourceType string
	)
	var signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Print a signed upload payload for a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signFn(cmd.Context(), cmd.OutOrStdout(), configPath, folder, resourceType)
		},
	}
	signCmd.Flags().StringVar(&folder, "folder", "", "destination folder")
	signCmd.Flags().StringVar(&resourceType, "resource-type", "auto", "auto, image, video or raw")
	_ = signCmd.MarkFlagRequired("folder")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(signCmd)
	return rootCmd
}

func main() {
	if err := NewRoot().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
