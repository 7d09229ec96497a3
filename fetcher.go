package winefetch

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations use browser automation and share one logged-in session
// across concurrent fetches.
type Fetcher interface {
	// Fetch navigates to the URL, waits for JavaScript to render,
	// and returns the rendered HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Credentials are the account details used to log into the review site.
type Credentials struct {
	Email    string
	Password string
}

// Validate returns an error if either field is empty.
func (c Credentials) Validate() error {
	if c.Email == "" {
		return Errorf(EINVALID, "email required")
	}
	if c.Password == "" {
		return Errorf(EINVALID, "password required")
	}
	return nil
}

// Authenticator establishes a logged-in session for subsequent fetches.
type Authenticator interface {
	// Login is a no-op when the session is already logged in.
	Login(ctx context.Context, creds Credentials) error
}

// Browser is a Fetcher that can log in.
type Browser interface {
	Fetcher
	Authenticator
}
