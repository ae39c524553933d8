package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
)

// ErrInvalidArtifact marks artifacts the archive can never store. Retrying
// the same artifact fails the same way.
var ErrInvalidArtifact = errors.New("artifacts: invalid artifact")

// Archive writes rendered invoices to disk. Files are grouped by the first
// characters of the document ID so regenerated invoices never overwrite
// earlier versions.
type Archive struct {
	Dir string
}

// Save writes the artifact and returns its path.
func (a Archive) Save(art export.Artifact) (string, error) {
	if len(art.Data) == 0 {
		return "", fmt.Errorf("%w: empty data", ErrInvalidArtifact)
	}
	if art.Filename == "" || filepath.Base(art.Filename) != art.Filename {
		return "", fmt.Errorf("%w: filename %q", ErrInvalidArtifact, art.Filename)
	}
	dir := a.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "invoices")
	}
	dir = filepath.Join(dir, art.ID.String()[:8])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
