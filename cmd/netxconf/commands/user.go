package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/auth"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users and token settings",
	// Short: 管理 API 用户和令牌设置
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <subject>",
	Short: "Create a user or change its password",
	Long: `Create a user or change its password. Without --password the password is read
from the first line of stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		store, err := common.GetStore()
		if err != nil {
			return err
		}
		if err := auth.SetPassword(cmd.Context(), store, common.Config().Keys.Users, args[0], password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password set for %s\n", args[0])
		return nil
	},
}

var userSecretCmd = &cobra.Command{
	Use:   "secret <signing-secret>",
	Short: "Set the token signing secret and lifetime",
	Long: `Write the auth settings document used to sign API tokens.

Examples:
  netxconf user secret 's3cr3t' --expires-in 12h
  netxconf user secret 's3cr3t' --expires-in 7d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expires, _ := cmd.Flags().GetString("expires-in")
		settings := auth.Settings{JWT: auth.JWTSettings{
			Password:  args[0],
			Algorithm: auth.AlgorithmHS256,
		}}
		if expires != "" {
			raw, err := json.Marshal(expires)
			if err != nil {
				return err
			}
			settings.JWT.ExpiresIn = raw
		}
		// Reject settings the server could not load
		// 拒绝服务端无法加载的设置
		if _, err := auth.NewTokenManager(settings, map[string]auth.User{}); err != nil {
			return err
		}

		store, err := common.GetStore()
		if err != nil {
			return err
		}
		if err := auth.WriteSettings(cmd.Context(), store, common.Config().Keys.AuthSettings, settings); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token settings saved")
		return nil
	},
}

var userTokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := common.GetStore()
		if err != nil {
			return err
		}
		cfg := common.Config()
		tm, err := auth.Load(cmd.Context(), store, auth.Keys{Users: cfg.Keys.Users, Settings: cfg.Keys.AuthSettings})
		if err != nil {
			return err
		}
		users, err := auth.LoadUsers(cmd.Context(), store, cfg.Keys.Users)
		if err != nil {
			return err
		}
		if _, ok := users[args[0]]; !ok {
			return fmt.Errorf("%w: user %q does not exist", errors.ErrNotFound, args[0])
		}
		token, err := tm.CreateToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	userPasswdCmd.Flags().String("password", "", "New password (read from stdin when empty)")
	userSecretCmd.Flags().String("expires-in", "", "Token lifetime, e.g. 3600, 12h or 7d (default: no expiry)")

	userCmd.AddCommand(userPasswdCmd)
	userCmd.AddCommand(userSecretCmd)
	userCmd.AddCommand(userTokenCmd)
}
