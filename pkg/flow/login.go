package flow

import (
	"log"

	"github.com/chromedp/cdproto/webauthn"

	"nk-passkey-probe/pkg/browser"
	"nk-passkey-probe/pkg/credstore"
)

// Login replays a stored credential snapshot through the virtual
// authenticator to perform an unattended passkey login, then rewrites the
// snapshot with the advanced signature counters.
func (r *Runner) Login() error {
	paths, err := r.Store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		r.printf("No credentials yet. Run the register command first.")
		r.waitForEnter("Press Enter to exit...")
		return nil
	}

	path := paths[0]
	if len(paths) > 1 {
		path, err = r.SelectSnapshot(paths)
		if err != nil {
			return err
		}
	}

	records, err := credstore.ReadSnapshot(path)
	if err != nil {
		return err
	}

	sess, err := browser.NewSession(r.Ctx, r.Headless)
	if err != nil {
		return err
	}
	defer sess.Close()

	auth, err := browser.Attach(sess)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := auth.AddCredential(rec); err != nil {
			return err
		}
	}
	log.Printf("[+] loaded %d credential(s) from %s", len(records), path)

	log.Printf("[+] navigating to %s", r.LoginURL)
	if err := sess.Navigate(r.LoginURL); err != nil {
		return err
	}

	r.printf("Looking for the passkey login button...")
	if err := sess.Click(selectorPasskeyLogin, waitTimeout); err != nil {
		return err
	}
	r.printf("Passkey login in progress... (the virtual authenticator answers automatically)")

	if err := sess.WaitTitle(titleClearedLogin, loginDetectTimeout); err != nil {
		return err
	}
	r.reportPage(sess, "login succeeded")

	if err := r.syncSignCounts(path, records, auth); err != nil {
		return err
	}

	r.printf("\nPasskey login succeeded.")
	r.waitForEnter("Press Enter to exit...")
	return nil
}

// syncSignCounts reads the updated records back from the authenticator
// and rewrites the snapshot in place so the next login presents the
// advanced counters. A counter regression aborts before the rewrite,
// leaving the snapshot untouched.
func (r *Runner) syncSignCounts(path string, before []*webauthn.Credential, auth *browser.Authenticator) error {
	updated, err := auth.Credentials()
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		log.Printf("[-] authenticator returned no credentials to sync; keeping %s as is", path)
		return nil
	}

	if err := credstore.CheckSignCounts(before, updated); err != nil {
		return err
	}
	logSignCountProgress(before, updated)

	if err := credstore.WriteSnapshot(path, updated); err != nil {
		return err
	}
	log.Printf("[+] snapshot %s updated with current sign counters", path)
	return nil
}

// logSignCountProgress reports per-credential counter movement.
func logSignCountProgress(before, after []*webauthn.Credential) {
	prev := make(map[string]int64, len(before))
	for _, c := range before {
		prev[c.CredentialID] = c.SignCount
	}
	for _, c := range after {
		if old, ok := prev[c.CredentialID]; ok {
			log.Printf("[+] sign counter: %d -> %d (%s)", old, c.SignCount, c.CredentialID)
		}
	}
}
