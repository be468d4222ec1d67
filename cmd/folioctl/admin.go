// cmd/folioctl/admin.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dalemusser/folio/internal/app/system/authutil"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/spf13/cobra"
)

var (
	adminEmail string
	adminName  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin account",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the admin account if it does not exist",
	Long: `create adds an admin account for --email. The password is read from
FOLIO_ADMIN_PASSWORD or, when unset, from the first line of stdin. An
existing account is left unchanged.`,
	RunE: runAdminCreate,
}

var adminPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace the password of the admin account",
	Long: `set-password reads the new password from FOLIO_ADMIN_PASSWORD or, when
unset, from the first line of stdin.`,
	RunE: runAdminSetPassword,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password",
	Long: `hash-password validates a password against the admin password rules and
prints its bcrypt hash, for provisioning the admins collection by hand.
Without an argument the password is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminPasswordCmd)

	adminCmd.PersistentFlags().StringVar(&adminEmail, "email", os.Getenv("FOLIO_ADMIN_EMAIL"), "Admin email address")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Admin", "Admin display name")
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	if adminEmail == "" {
		return errors.New("--email is required")
	}
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Write())
	defer cancel()
	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	created, err := identity.NewMongo(db, nil, newLogger()).EnsureAdmin(ctx, adminEmail, adminName, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", authutil.NormalizeEmail(adminEmail))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", authutil.NormalizeEmail(adminEmail))
	}
	return nil
}

func runAdminSetPassword(cmd *cobra.Command, args []string) error {
	if adminEmail == "" {
		return errors.New("--email is required")
	}
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Write())
	defer cancel()
	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	if err := identity.NewMongo(db, nil, newLogger()).SetPassword(ctx, adminEmail, password); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "password updated")
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		var err error
		if password, err = readLine(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

// readPassword prefers FOLIO_ADMIN_PASSWORD over stdin.
func readPassword(stdin io.Reader) (string, error) {
	if p := os.Getenv("FOLIO_ADMIN_PASSWORD"); p != "" {
		return p, nil
	}
	return readLine(stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
