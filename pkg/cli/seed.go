package cli

import (
	"fmt"
	"log"

	"github.com/chromedp/cdproto/webauthn"
	"github.com/spf13/cobra"

	"nk-passkey-probe/pkg/config"
	"nk-passkey-probe/pkg/credstore"
	"nk-passkey-probe/pkg/rpid"
	"nk-passkey-probe/pkg/softauthn"
)

var seedRPID string

// seedCmd mints a synthetic resident credential and saves it as a
// snapshot, so the store and injection path can be exercised against a
// demo relying party without walking the live registration ceremony.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Mint a synthetic credential snapshot without a registration ceremony",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportOutcome(cmd, runSeed(), nil)
	},
}

func runSeed() error {
	rp := seedRPID
	if rp == "" {
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("--rpid not given and no login URL to derive it from: %w", err)
		}
		rp, err = rpid.Extract(cfg.LoginURL)
		if err != nil {
			return err
		}
	}

	cred, err := softauthn.Mint(rp)
	if err != nil {
		return err
	}
	rec, err := cred.Export()
	if err != nil {
		return err
	}
	log.Printf("[+] minted credential for %s (sign counter %d)", rp, cred.SignCount)

	path, err := credstore.New(credentialsDir).Save([]*webauthn.Credential{rec})
	if err != nil {
		return err
	}
	log.Printf("[+] snapshot saved to %s", path)
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedRPID, "rpid", "",
		"relying-party ID for the minted credential (default: derived from "+config.EnvLoginURL+")")
}
