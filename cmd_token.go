package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/myconfig"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for local development",
	Long:  `Signs a token with JWT_SECRET for the given user, to call the driver onboarding and checkout endpoints.`,
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

var (
	tokenUserUID string
	tokenEmail   string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUserUID, "uid", "", "uid of the user")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "validity of the token")
	_ = tokenCmd.MarkFlagRequired("uid")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := myconfig.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %s", err)
	}

	token, err := myauth.NewToken(cfg.JWTSecret, myauth.User{UID: tokenUserUID, Email: tokenEmail}, time.Now(), tokenTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
