package domain

import "context"

// AccessCredentials are the entry credentials issued for an event at creation
// time: a short numeric code and the storage key of the rendered QR image.
type AccessCredentials struct {
	AccessCode string
	QRCodeKey  string
}

// CredentialIssuer generates an event's access code and persists its QR image.
type CredentialIssuer interface {
	// IssueCredentials draws a 4-digit access code and renders a QR image
	// encoding exactly eventID, persisted under the event's blob namespace.
	// Render or upload failure is fatal; event creation must abort on error.
	IssueCredentials(ctx context.Context, eventID string) (*AccessCredentials, error)
}

// QRRenderer renders a short payload string into a raster image with high
// error-correction tolerance at a fixed pixel size.
type QRRenderer interface {
	Render(payload string) ([]byte, error)
}

// BlobStore is a hierarchical-path blob store. Keys are slash-separated;
// everything belonging to an event lives under "events/{id}/".
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// PresignGetURL returns a time-limited URL for fetching the object.
	PresignGetURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every object under the prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}
