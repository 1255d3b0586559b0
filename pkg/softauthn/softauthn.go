// Package softauthn mints and inspects authenticator credentials in
// software. Minted credentials use the same ES256/PKCS#8 material the
// browser's virtual authenticator produces, so they can be injected and
// exercised without a live registration ceremony.
package softauthn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/chromedp/cdproto/webauthn"
	"github.com/fxamacker/cbor/v2"
)

const es256 = -7

// COSEKey is the CBOR shape of an ES256 public key.
type COSEKey struct {
	Kty int    `cbor:"1,keyasint"`
	Alg int    `cbor:"3,keyasint"`
	Crv int    `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
}

// Credential is a resident credential in authenticator-internal form.
type Credential struct {
	ID         []byte
	PrivateKey *ecdsa.PrivateKey
	RPID       string
	UserHandle []byte
	SignCount  uint32
}

// Mint creates a fresh resident credential scoped to rpID. The initial
// signature counter is drawn from a small non-zero-biased range the way
// lightly used hardware keys report it.
func Mint(rpID string) (*Credential, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("failed to generate credential ID: %w", err)
	}
	userHandle := make([]byte, 16)
	if _, err := rand.Read(userHandle); err != nil {
		return nil, fmt.Errorf("failed to generate user handle: %w", err)
	}

	return &Credential{
		ID:         id,
		PrivateKey: privateKey,
		RPID:       rpID,
		UserHandle: userHandle,
		SignCount:  initialSignCount(),
	}, nil
}

// Export converts the credential into the record shape the CDP WebAuthn
// domain consumes: base64 credential ID, user handle, and PKCS#8 key.
func (c *Credential) Export() (*webauthn.Credential, error) {
	pkcs8, err := x509.MarshalPKCS8PrivateKey(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key to PKCS#8: %w", err)
	}
	return &webauthn.Credential{
		CredentialID:         base64.StdEncoding.EncodeToString(c.ID),
		IsResidentCredential: true,
		RpID:                 c.RPID,
		PrivateKey:           base64.StdEncoding.EncodeToString(pkcs8),
		UserHandle:           base64.StdEncoding.EncodeToString(c.UserHandle),
		SignCount:            int64(c.SignCount),
	}, nil
}

// Parse recovers the authenticator-internal form from a stored record.
func Parse(rec *webauthn.Credential) (*Credential, error) {
	id, err := base64.StdEncoding.DecodeString(rec.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode credential ID: %w", err)
	}
	userHandle, err := base64.StdEncoding.DecodeString(rec.UserHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user handle: %w", err)
	}
	pkcs8, err := base64.StdEncoding.DecodeString(rec.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	key, err := x509.ParsePKCS8PrivateKey(pkcs8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("credential %s holds a %T, want ECDSA", rec.CredentialID, key)
	}
	return &Credential{
		ID:         id,
		PrivateKey: ecKey,
		RPID:       rec.RpID,
		UserHandle: userHandle,
		SignCount:  uint32(rec.SignCount),
	}, nil
}

// EncodeCOSEKey serializes an ES256 public key as a CBOR COSE_Key.
func EncodeCOSEKey(pub *ecdsa.PublicKey) ([]byte, error) {
	x := make([]byte, 32)
	y := make([]byte, 32)
	pub.X.FillBytes(x)
	pub.Y.FillBytes(y)

	key := &COSEKey{
		Kty: 2, // EC2
		Alg: es256,
		Crv: 1, // P-256
		X:   x,
		Y:   y,
	}
	data, err := cbor.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal COSE key: %w", err)
	}
	return data, nil
}

// KeyFingerprint returns the hex SHA-256 of the COSE encoding of pub,
// a stable identifier for a credential's public half.
func KeyFingerprint(pub *ecdsa.PublicKey) (string, error) {
	data, err := EncodeCOSEKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// initialSignCount picks a counter in [0, 50]; hardware authenticators
// rarely leave the factory at exactly zero.
func initialSignCount() uint32 {
	n, _ := rand.Int(rand.Reader, big.NewInt(51))
	return uint32(n.Int64())
}
