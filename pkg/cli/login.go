package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nk-passkey-probe/pkg/credstore"
)

var loginTips = []string{
	"check that the credential snapshot is valid JSON in the expected shape",
	"check that the passkey is still registered with the portal",
	"check that Chrome is installed and reachable",
	"check that NK_LOGIN_URL in .env points at the login page",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in unattended with a stored credential snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// No snapshots means there is nothing to configure a browser
		// for; guide the operator without requiring a login URL.
		if !credstore.New(credentialsDir).Exists() {
			fmt.Fprintln(cmd.OutOrStdout(), "No credentials yet. Run the register command first.")
			return nil
		}
		r, err := newRunner(cmd)
		if err != nil {
			return reportOutcome(cmd, err, nil)
		}
		return reportOutcome(cmd, r.Login(), loginTips)
	},
}
