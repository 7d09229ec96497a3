package mock

import (
	"context"

	"github.com/fwojciec/winefetch"
)

var _ winefetch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of winefetch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ winefetch.Browser = (*Browser)(nil)

// Browser is a mock implementation of winefetch.Browser.
type Browser struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	LoginFn func(ctx context.Context, creds winefetch.Credentials) error
	CloseFn func() error
}

func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	return b.FetchFn(ctx, url)
}

func (b *Browser) Login(ctx context.Context, creds winefetch.Credentials) error {
	return b.LoginFn(ctx, creds)
}

func (b *Browser) Close() error {
	return b.CloseFn()
}

var _ winefetch.Authenticator = (*Authenticator)(nil)

// Authenticator is a mock implementation of winefetch.Authenticator.
type Authenticator struct {
	LoginFn func(ctx context.Context, creds winefetch.Credentials) error
}

func (a *Authenticator) Login(ctx context.Context, creds winefetch.Credentials) error {
	return a.LoginFn(ctx, creds)
}
