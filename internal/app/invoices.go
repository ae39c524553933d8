package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/layout"
)

const logoFetchTimeout = 5 * time.Second

// LogoLoader returns the configured logo source. LOGO_PATH wins over LOGO_URL;
// nil means the header always uses the text fallback.
func (c *Config) LogoLoader() layout.LogoLoader {
	switch {
	case c == nil:
		return nil
	case c.LogoPath != "":
		return export.FileLogo{Path: c.LogoPath}
	case c.LogoURL != "":
		return export.URLLogo{URL: c.LogoURL, Client: &http.Client{Timeout: logoFetchTimeout}}
	default:
		return nil
	}
}

// NewGenerator builds the invoice generator shared by the server, the worker
// and the CLI.
func NewGenerator(cfg *Config, logger *slog.Logger, metrics export.Recorder) *export.Generator {
	return export.NewGenerator(export.Options{
		Config:  cfg.LayoutConfig(),
		Logo:    cfg.LogoLoader(),
		Logger:  logger,
		Metrics: metrics,
	})
}
