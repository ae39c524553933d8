package layout

import (
	"context"
	"errors"
)

// ErrNoLogo is returned when no logo source is configured.
var ErrNoLogo = errors.New("layout: no logo configured")

// Logo is a decoded header image ready for embedding. PNG holds the encoded
// bytes; Width and Height are its pixel dimensions.
type Logo struct {
	PNG    []byte
	Width  int
	Height int
}

// LogoLoader acquires the company logo. Loading may block on I/O and is the
// only step of a layout run allowed to fail without aborting it.
type LogoLoader interface {
	LoadLogo(ctx context.Context) (*Logo, error)
}

// logoResult is either a usable logo or the reason the text fallback applies.
type logoResult struct {
	logo *Logo
	err  error
}

func loadLogo(ctx context.Context, loader LogoLoader) logoResult {
	if loader == nil {
		return logoResult{err: ErrNoLogo}
	}
	logo, err := loader.LoadLogo(ctx)
	if err != nil {
		return logoResult{err: err}
	}
	if logo == nil || len(logo.PNG) == 0 || logo.Width <= 0 || logo.Height <= 0 {
		return logoResult{err: errors.New("layout: empty logo")}
	}
	return logoResult{logo: logo}
}
