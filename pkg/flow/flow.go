// Package flow orchestrates the passkey registration and login ceremonies
// against the banking portal, combining browser automation with the
// human-assisted steps (primary login, one-time password entry).
package flow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"nk-passkey-probe/pkg/credstore"
)

// ErrNoCredentials means a ceremony finished but the virtual
// authenticator ended up holding nothing.
var ErrNoCredentials = errors.New("flow: authenticator returned no credentials")

// Page titles that contain any of these keywords indicate the portal is
// still showing a login or verification screen; the title dropping all
// of them is the closest thing to a "logged in" signal the site offers.
var loginTitleKeywords = []string{"ログイン", "二要素認証", "認証"}

// Portal DOM contract. These selectors are specific to the target site
// and break whenever it is redesigned.
const (
	// Direct link to passkey setup, present in the header on some pages.
	selectorPasskeySetup = `a[href*="/kyak/passkey_settei/init"]`
	// Fallback path: the account-info header image sits inside the
	// anchor we actually need, so the click targets its parent.
	selectorAccountInfoLink = `//img[@alt="口座情報"]/..`
	selectorOTPSend         = `input[alt="ワンタイムパスワードを送信する"]`
	// Step indicator images on the passkey setup wizard.
	selectorOTPDone   = `img[src*="step_passkey_settei_02_on"]`
	selectorSetupDone = `img[src*="step_passkey_settei_03_on"]`
	// Passkey login button on the login page.
	selectorPasskeyLogin = `button.pskey-submit__button_type`
)

const (
	waitTimeout  = 30 * time.Second
	shortTimeout = 5 * time.Second
	// Human steps: primary login, OTP entry, pressing the setup button.
	humanTimeout = 5 * time.Minute
	// Passkey login needs no operator action, so detection is bounded
	// much tighter.
	loginDetectTimeout = 60 * time.Second
)

// Runner holds everything one register or login invocation needs.
type Runner struct {
	Ctx      context.Context // cancelled on operator interrupt
	Store    *credstore.Store
	LoginURL string
	Headless bool
	In       io.Reader // operator input, os.Stdin outside tests
	Out      io.Writer // operator-facing text, os.Stdout outside tests
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// banner frames instructions the operator must act on.
func (r *Runner) banner(lines ...string) {
	rule := strings.Repeat("=", 60)
	r.printf("\n%s", rule)
	for _, l := range lines {
		r.printf("%s", l)
	}
	r.printf("%s\n", rule)
}

// waitForEnter blocks until the operator presses Enter (or input closes).
func (r *Runner) waitForEnter(message string) {
	fmt.Fprint(r.Out, message)
	reader := bufio.NewReader(r.In)
	_, _ = reader.ReadString('\n')
}

// titleClearedLogin reports whether the title no longer names a login or
// verification screen.
func titleClearedLogin(title string) bool {
	for _, kw := range loginTitleKeywords {
		if strings.Contains(title, kw) {
			return false
		}
	}
	return true
}
