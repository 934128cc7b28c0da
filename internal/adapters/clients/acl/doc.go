// Package acl adapts the object storage REST API and remote logo hosts to
// the ports the quote service depends on.
//
// Storage and host payloads stay unexported here. Failed requests become
// domain errors:
//
//	404                        domain.ErrNotFound
//	409                        domain.ErrConflict
//	401, 403                   domain.ErrForbidden
//	429, 5xx, transport errors domain.ErrUnavailable
//	other 4xx                  domain.ErrValidation
//
// Uploads and deletes are stricter. Any rejection is a domain.ErrInternal
// carrying the storage message, which the client sees verbatim.
package acl
