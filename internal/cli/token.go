package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if owner == "" {
			return errors.New("--owner is required")
		}

		a, err := newApp(cmd.Context(), settings, false)
		if err != nil {
			return err
		}
		defer a.Close()

		plain, err := a.tokens.Issue(cmd.Context(), owner, name, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), plain)
		if ttl > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Now().Add(ttl).Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("owner", "", "Owner id the token authenticates as")
	tokenCmd.Flags().String("name", "cli", "Token label")
	tokenCmd.Flags().Duration("ttl", 0, "Lifetime, 0 for no expiry")
}
