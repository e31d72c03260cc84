package domain

import "context"

// AdminPointerRepository stores the "last viewed admin event" pointer, one per browser.
// The pointer has no expiry; Get returns ErrNotFound when none is stored.
type AdminPointerRepository interface {
	Get(ctx context.Context, browserID string) (eventID string, err error)
	Set(ctx context.Context, browserID, eventID string) error
	Clear(ctx context.Context, browserID string) error
}
