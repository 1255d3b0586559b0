// Package cli wires the register, login, seed, and inspect commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nk-passkey-probe/pkg/config"
	"nk-passkey-probe/pkg/credstore"
	"nk-passkey-probe/pkg/flow"
)

var (
	envFile        string
	credentialsDir string
	headless       bool
)

var rootCmd = &cobra.Command{
	Use:   "nk-passkey-probe",
	Short: "Passkey registration and login checks against the bank portal",
	Long: `nk-passkey-probe drives Chrome through the bank portal's WebAuthn
passkey flows using a virtual authenticator instead of a physical key.

register walks the operator-assisted setup ceremony (primary login, OTP,
passkey creation) and captures the resulting credentials to a snapshot.
login replays a snapshot unattended and records the advanced signature
counters back into it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with operator-interrupt handling.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

// execute runs the root command and prints any error reportOutcome has
// not already surfaced (flag parse failures, unknown commands), so
// SilenceErrors never turns into a silent non-zero exit.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, config.ErrLoginURLNotSet) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "ERROR: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"env file supplying "+config.EnvLoginURL)
	rootCmd.PersistentFlags().StringVar(&credentialsDir, "credentials-dir", "credentials",
		"directory holding credential snapshots")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false,
		"run Chrome headless (register and login need a visible window for the operator)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(inspectCmd)
}

// newRunner assembles a flow runner from configuration and flags.
func newRunner(cmd *cobra.Command) (*flow.Runner, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	return &flow.Runner{
		Ctx:      cmd.Context(),
		Store:    credstore.New(credentialsDir),
		LoginURL: cfg.LoginURL,
		Headless: headless,
		In:       os.Stdin,
		Out:      cmd.OutOrStdout(),
	}, nil
}

// reportOutcome implements the abort-and-report policy: a missing login
// URL propagates and exits non-zero, an operator interrupt is
// acknowledged without tips, and every other failure is printed with its
// troubleshooting tips and then swallowed so the process exits cleanly.
func reportOutcome(cmd *cobra.Command, err error, tips []string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, config.ErrLoginURLNotSet):
		fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %s is not set in the env file.\n", config.EnvLoginURL)
		fmt.Fprintln(cmd.ErrOrStderr(), "Troubleshooting: set the login URL in .env or the environment.")
		return err
	case errors.Is(err, context.Canceled) && cmd.Context().Err() != nil:
		fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted by the operator.")
		return nil
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "\nERROR: %v\n", err)
		if len(tips) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nTroubleshooting:")
			for _, tip := range tips {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", tip)
			}
		}
		return nil
	}
}
