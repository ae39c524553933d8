package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/layout"
)

const (
	maxLogoWidth = 600
	maxLogoBytes = 4 << 20
)

// FileLogo loads the header logo from the local filesystem.
type FileLogo struct {
	Path string
}

// LoadLogo implements layout.LogoLoader.
func (f FileLogo) LoadLogo(ctx context.Context) (*layout.Logo, error) {
	if f.Path == "" {
		return nil, layout.ErrNoLogo
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return NormalizeLogo(raw)
}

// URLLogo fetches the header logo over HTTP.
type URLLogo struct {
	URL    string
	Client *http.Client
}

// LoadLogo implements layout.LogoLoader.
func (u URLLogo) LoadLogo(ctx context.Context) (*layout.Logo, error) {
	if u.URL == "" {
		return nil, layout.ErrNoLogo
	}
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("logo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return NormalizeLogo(raw)
}

// NormalizeLogo decodes png, jpeg or webp bytes, scales wide images down to
// maxLogoWidth pixels and re-encodes the result as PNG.
func NormalizeLogo(raw []byte) (*layout.Logo, error) {
	if len(raw) == 0 {
		return nil, errors.New("logo is empty")
	}
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, errors.New("logo must be png, jpeg, or webp")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, fmt.Errorf("decode logo: %w", err)
		}
		img = decoded
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("logo has invalid dimensions")
	}
	if width > maxLogoWidth {
		scaledHeight := height * maxLogoWidth / width
		if scaledHeight < 1 {
			scaledHeight = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxLogoWidth, scaledHeight))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
		width, height = maxLogoWidth, scaledHeight
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &layout.Logo{PNG: out.Bytes(), Width: width, Height: height}, nil
}
