package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventmenu/internal/domain"
)

// AnonymousSignInBanner is shown when a guest session could not be started.
const AnonymousSignInBanner = "We couldn't start your guest session. Please refresh the page to try again."

// Outcome is what a browser needs to render after resolution.
// swagger:model SessionOutcome
type Outcome struct {
	State State `json:"state"`
	// Banner is a non-blocking error message for the top of the page.
	Banner string `json:"banner,omitempty"`
	// GuestToken is set when an anonymous session was started for this request.
	GuestToken string           `json:"guest_token,omitempty"`
	Identity   *domain.Identity `json:"identity,omitempty"`
	Location   string           `json:"location"`
}

// Navigator runs Resolve against stored state and performs the side effects of
// resolution and explicit navigation.
type Navigator struct {
	pointers domain.AdminPointerRepository
	auth     domain.AuthService
	basePath string
	logger   *slog.Logger
}

func NewNavigator(pointers domain.AdminPointerRepository, auth domain.AuthService, basePath string, logger *slog.Logger) *Navigator {
	if basePath == "" {
		basePath = "/"
	}
	return &Navigator{pointers: pointers, auth: auth, basePath: basePath, logger: logger}
}

// Resolve never fails: pointer read errors degrade to "no pointer" and anonymous sign-in
// errors become a banner on an otherwise resolved state.
func (n *Navigator) Resolve(ctx context.Context, browserID, rawQuery string, identity *domain.Identity) Outcome {
	in := Input{URLEventID: EventIDFromQuery(rawQuery), Identity: identity}
	if in.URLEventID == "" && identity.IsOrganizer() && browserID != "" {
		stored, err := n.pointers.Get(ctx, browserID)
		switch {
		case err == nil:
			in.StoredAdminEventID = stored
		case errors.Is(err, domain.ErrNotFound):
		default:
			n.logger.WarnContext(ctx, "read admin pointer failed", "browser_id", browserID, "err", err)
		}
	}

	res := Resolve(in)
	out := Outcome{State: res.State, Identity: identity, Location: Location(n.basePath, res.State)}
	if res.NeedsAnonymousSignIn {
		token, anon, err := n.auth.SignInAnonymously(ctx)
		if err != nil {
			n.logger.WarnContext(ctx, "anonymous sign-in failed", "event_id", res.State.EventID, "err", err)
			out.Banner = AnonymousSignInBanner
			return out
		}
		out.GuestToken = token
		out.Identity = &anon
	}
	return out
}

// Navigate applies an explicit navigation: the dashboard remembers its event for this
// browser, home and login forget it. It returns the new address-bar location.
func (n *Navigator) Navigate(ctx context.Context, browserID string, target State) (string, error) {
	if !target.Valid() {
		return "", fmt.Errorf("navigation target %q: %w", target.View, domain.ErrInvalidInput)
	}
	switch target.View {
	case ViewOrganizerDashboard:
		if browserID == "" {
			return "", fmt.Errorf("browser id is required: %w", domain.ErrInvalidInput)
		}
		if err := n.pointers.Set(ctx, browserID, target.EventID); err != nil {
			return "", fmt.Errorf("store admin pointer: %w", err)
		}
	case ViewOrganizerHome, ViewLogin:
		if browserID != "" {
			if err := n.pointers.Clear(ctx, browserID); err != nil {
				return "", fmt.Errorf("clear admin pointer: %w", err)
			}
		}
	}
	return Location(n.basePath, target), nil
}
