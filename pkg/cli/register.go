package cli

import (
	"github.com/spf13/cobra"
)

var registerTips = []string{
	"check that Chrome is installed and reachable",
	"check that the browser actually left the login screen after you signed in",
	"check that the account page still exposes the passkey setup link",
	"check that NK_LOGIN_URL in .env points at the login page",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a passkey (operator completes login and OTP entry)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return reportOutcome(cmd, err, nil)
		}
		return reportOutcome(cmd, r.Register(), registerTips)
	},
}
