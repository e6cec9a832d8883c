package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRateLimited           = errors.New("provider rate limit exceeded")
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrProviderTimeout       = errors.New("provider call timed out")
	ErrMissingMapping        = errors.New("external reference mapping missing")
	ErrNoCurrentSeason       = errors.New("no current season configured")
)
