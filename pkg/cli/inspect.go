package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"nk-passkey-probe/pkg/credstore"
	"nk-passkey-probe/pkg/softauthn"
)

var inspectFile string

// inspectCmd prints the contents of a snapshot without touching it.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show stored credential snapshots and their signature counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportOutcome(cmd, runInspect(cmd.OutOrStdout()), nil)
	},
}

func runInspect(out io.Writer) error {
	store := credstore.New(credentialsDir)

	paths, err := store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 && inspectFile == "" {
		fmt.Fprintf(out, "No credential snapshots in %s.\n", store.Dir())
		return nil
	}

	target := inspectFile
	if target == "" {
		fmt.Fprintln(out, "Snapshots (newest first):")
		for i, p := range paths {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, filepath.Base(p))
		}
		target = paths[0]
	}

	records, err := credstore.ReadSnapshot(target)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s (%d record(s)):\n", target, len(records))
	for i, rec := range records {
		fmt.Fprintf(out, "  #%d rpId=%s signCount=%d\n", i+1, rec.RpID, rec.SignCount)
		fmt.Fprintf(out, "     credentialId=%s\n", rec.CredentialID)
		fmt.Fprintf(out, "     userHandle=%s\n", rec.UserHandle)

		cred, err := softauthn.Parse(rec)
		if err != nil {
			fmt.Fprintf(out, "     key: unreadable (%v)\n", err)
			continue
		}
		fp, err := softauthn.KeyFingerprint(&cred.PrivateKey.PublicKey)
		if err != nil {
			fmt.Fprintf(out, "     key: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "     key fingerprint (COSE sha256)=%s\n", fp)
	}
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "",
		"inspect this snapshot file instead of the latest one")
}
