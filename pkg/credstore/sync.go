package credstore

import (
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/webauthn"
)

// ErrSignCountRegressed is returned when a credential's signature counter
// moved backwards between two reads, which a relying party would treat as
// evidence of a cloned credential.
var ErrSignCountRegressed = errors.New("credstore: signature counter regressed")

// CheckSignCounts verifies that no credential present in both record sets
// has a lower signature counter in after than in before. Credentials that
// appear on only one side are ignored.
func CheckSignCounts(before, after []*webauthn.Credential) error {
	prev := make(map[string]int64, len(before))
	for _, c := range before {
		prev[c.CredentialID] = c.SignCount
	}
	for _, c := range after {
		old, ok := prev[c.CredentialID]
		if ok && c.SignCount < old {
			return fmt.Errorf("%w: credential %s went %d -> %d",
				ErrSignCountRegressed, c.CredentialID, old, c.SignCount)
		}
	}
	return nil
}
