package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"frameit/internal/domain"
)

// Access codes are 4-digit numbers drawn uniformly from 1000-9999. There is
// no uniqueness check across events: a code is only ever used together with
// its event ID, never alone.
const (
	accessCodeMin  = 1000
	accessCodeSpan = 9000
)

type credentialIssuer struct {
	renderer domain.QRRenderer
	blobs    domain.BlobStore
}

// NewCredentialIssuer returns a CredentialIssuer that renders QR images with
// the given renderer and persists them in the given blob store.
func NewCredentialIssuer(renderer domain.QRRenderer, blobs domain.BlobStore) domain.CredentialIssuer {
	return &credentialIssuer{renderer: renderer, blobs: blobs}
}

func (i *credentialIssuer) IssueCredentials(ctx context.Context, eventID string) (*domain.AccessCredentials, error) {
	code, err := generateAccessCode()
	if err != nil {
		return nil, fmt.Errorf("generate access code: %w", err)
	}

	// The QR payload is the event ID, not the access code. A scan recovers
	// the identifier; the code is still challenged separately.
	png, err := i.renderer.Render(eventID)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}

	key := QRCodeKey(eventID)
	if err := i.blobs.Put(ctx, key, "image/png", png); err != nil {
		return nil, fmt.Errorf("persist qr code: %w", err)
	}

	return &domain.AccessCredentials{AccessCode: code, QRCodeKey: key}, nil
}

func generateAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(accessCodeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", accessCodeMin+n.Int64()), nil
}

// QRCodeKey returns the blob key of an event's QR image.
func QRCodeKey(eventID string) string {
	return fmt.Sprintf("events/%s/qr-code.png", eventID)
}

// EventBlobPrefix returns the blob namespace holding everything derived from
// an event. Deleting the event sweeps this prefix.
func EventBlobPrefix(eventID string) string {
	return fmt.Sprintf("events/%s/", eventID)
}
