package flow

import (
	"log"

	"nk-passkey-probe/pkg/browser"
	"nk-passkey-probe/pkg/rpid"
)

// Register drives the passkey registration ceremony: operator login, OTP
// verification, passkey creation answered by the virtual authenticator,
// then capture and persistence of the resulting credential records.
func (r *Runner) Register() error {
	expectedRP, err := rpid.Extract(r.LoginURL)
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

	log.Printf("[+] navigating to %s", r.LoginURL)
	if err := sess.Navigate(r.LoginURL); err != nil {
		return err
	}

	r.printf("Log in in the browser window. Completion is detected automatically...")
	if err := sess.WaitTitle(titleClearedLogin, humanTimeout); err != nil {
		return err
	}
	r.reportPage(sess, "login detected")

	if err := r.navigateToPasskeySetup(sess); err != nil {
		return err
	}

	log.Printf("[+] clicking the OTP send button")
	if err := sess.Click(selectorOTPSend, waitTimeout); err != nil {
		return err
	}

	r.banner(
		"A one-time password (OTP) is being sent to you by email.",
		"Enter the OTP in the browser and complete identity verification.",
		"Waiting automatically for the passkey setup screen...",
	)
	log.Printf("[+] waiting for OTP entry to complete")
	if err := sess.WaitPresent(selectorOTPDone, humanTimeout); err != nil {
		return err
	}
	log.Printf("[+] OTP verification completed")

	r.banner(
		"Press the passkey setup button in the browser.",
		"The virtual authenticator answers automatically; waiting for completion...",
	)
	if err := sess.WaitPresent(selectorSetupDone, humanTimeout); err != nil {
		return err
	}
	log.Printf("[+] passkey setup completed")

	creds, err := auth.Credentials()
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		return ErrNoCredentials
	}
	log.Printf("[+] captured %d credential(s)", len(creds))
	for _, c := range creds {
		if c.RpID != expectedRP {
			log.Printf("[-] credential %s is scoped to %q, expected %q", c.CredentialID, c.RpID, expectedRP)
		}
	}

	path, err := r.Store.Save(creds)
	if err != nil {
		return err
	}
	log.Printf("[+] credentials saved to %s", path)

	r.printf("\nPasskey registration succeeded.")
	r.waitForEnter("Press Enter to exit...")
	return nil
}

// navigateToPasskeySetup reaches the passkey setup page, preferring the
// direct header link and falling back to the account-info page when the
// link is not present on the post-login screen.
func (r *Runner) navigateToPasskeySetup(sess *browser.Session) error {
	r.printf("Looking for the passkey setup link...")
	if err := sess.Click(selectorPasskeySetup, shortTimeout); err == nil {
		r.printf("Found the passkey setup link, following it...")
		return nil
	}

	r.printf("No direct link; going through the account-info page...")
	if err := sess.Click(selectorAccountInfoLink, waitTimeout); err != nil {
		return err
	}
	r.printf("Looking for the passkey setup link on the account-info page...")
	return sess.Click(selectorPasskeySetup, waitTimeout)
}

// reportPage logs where a detected transition landed.
func (r *Runner) reportPage(sess *browser.Session, what string) {
	loc, err := sess.CurrentURL()
	if err != nil {
		return
	}
	title, err := sess.Title()
	if err != nil {
		return
	}
	log.Printf("[+] %s: %s (%s)", what, title, loc)
}
