// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// ObjectStorage stores binary objects (logos, project images) in named buckets.
type ObjectStorage interface {
	// Upload stores content at path inside bucket and returns its public URL.
	// An existing object at the same path is not overwritten.
	// Returns a domain.InternalError carrying the storage message on rejection.
	Upload(ctx context.Context, bucket, path string, content []byte, contentType string) (string, error)

	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, path string) error
}

// Image is a fetched raster image.
type Image struct {
	Data        []byte
	ContentType string
}

// ImageFetcher downloads images referenced by URL, such as quote logos.
type ImageFetcher interface {
	// Fetch downloads the image at url.
	// Implementations must bound the call with a timeout.
	Fetch(ctx context.Context, url string) (*Image, error)
}

// DocumentRenderer produces printable documents.
type DocumentRenderer interface {
	// RenderQuote renders a quote whose items have resolved articles.
	// logo may be nil.
	RenderQuote(ctx context.Context, quote *domain.Quote, logo *Image) ([]byte, error)
}

// QuoteEmail is an outgoing message carrying a rendered quote.
type QuoteEmail struct {
	QuoteID        uint
	RecipientEmail string
	RecipientName  string
	PDF            []byte
}

// PasswordResetEmail is an outgoing message carrying a reset token.
type PasswordResetEmail struct {
	RecipientEmail string
	RecipientName  string
	Token          string
}

// Mailer sends templated transactional email.
type Mailer interface {
	// SendQuote emails a quote PDF to a client.
	SendQuote(ctx context.Context, msg QuoteEmail) error

	// SendPasswordReset emails a reset token to an account holder.
	SendPasswordReset(ctx context.Context, msg PasswordResetEmail) error
}

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	// Issue creates a signed token for the user.
	Issue(user *domain.User) (string, error)

	// Verify parses a token and returns the actor it identifies.
	// Returns domain.ErrUnauthorized for invalid or expired tokens.
	Verify(token string) (domain.Actor, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}
