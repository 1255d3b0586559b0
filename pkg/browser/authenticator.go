package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/webauthn"
	"github.com/chromedp/chromedp"
)

// Authenticator is a virtual WebAuthn authenticator attached to a
// session via the CDP WebAuthn domain. It stands in for a platform
// passkey device: resident keys, user verification, and consent are all
// answered automatically, so ceremonies complete without a physical key.
type Authenticator struct {
	session *Session
	id      webauthn.AuthenticatorID
}

// Attach enables the WebAuthn domain on the session and adds a virtual
// platform authenticator to it.
func Attach(s *Session) (*Authenticator, error) {
	options := &webauthn.VirtualAuthenticatorOptions{
		Protocol:                    webauthn.AuthenticatorProtocolCtap2,
		Transport:                   webauthn.AuthenticatorTransportInternal,
		HasResidentKey:              true,
		HasUserVerification:         true,
		AutomaticPresenceSimulation: true,
		IsUserVerified:              true,
	}

	if err := s.run(webauthn.Enable().WithEnableUI(true)); err != nil {
		return nil, fmt.Errorf("failed to enable WebAuthn: %w", err)
	}

	var id webauthn.AuthenticatorID
	if err := s.run(chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		id, err = webauthn.AddVirtualAuthenticator(options).Do(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("failed to add virtual authenticator: %w", err)
	}

	if err := s.run(
		webauthn.SetAutomaticPresenceSimulation(id, true),
		webauthn.SetUserVerified(id, true),
	); err != nil {
		return nil, fmt.Errorf("failed to configure virtual authenticator: %w", err)
	}

	return &Authenticator{session: s, id: id}, nil
}

// AddCredential injects a stored credential record into the
// authenticator, signature counter included.
func (a *Authenticator) AddCredential(cred *webauthn.Credential) error {
	if err := a.session.run(webauthn.AddCredential(a.id, cred)); err != nil {
		return fmt.Errorf("failed to inject credential %s: %w", cred.CredentialID, err)
	}
	return nil
}

// Credentials reads back every credential the authenticator currently
// holds, including signature counters updated by completed ceremonies.
func (a *Authenticator) Credentials() ([]*webauthn.Credential, error) {
	var creds []*webauthn.Credential
	if err := a.session.run(chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		creds, err = webauthn.GetCredentials(a.id).Do(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return creds, nil
}
