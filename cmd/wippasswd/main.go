// Command wippasswd prints bcrypt hashes for the users file.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/auth"
)

var rootCmd = &cobra.Command{
	Use:   "wippasswd",
	Short: "Hash a password for users.json",
	Long: `wippasswd reads one password per line from standard input and prints
its bcrypt hash, ready to paste into the "password" field of users.json.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHash,
}

func runHash(cmd *cobra.Command, _ []string) error {
	return hashLines(cmd.InOrStdin(), cmd.OutOrStdout())
}

func hashLines(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	hashed := 0
	for scanner.Scan() {
		password := strings.TrimRight(scanner.Text(), "\r")
		if password == "" {
			continue
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(w, hash)
		hashed++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if hashed == 0 {
		return errors.New("no password on standard input")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wippasswd:", err)
		os.Exit(1)
	}
}
