package pagecall

import (
	"embed"
	"fmt"
	"io/fs"
	"unicode/utf8"
)

// BootstrapAsset is the exact file name of the bootstrap script.
const BootstrapAsset = "PagecallNative.js"

//go:embed assets/PagecallNative.js
var bundled embed.FS

// BundledAssets returns the assets compiled into the package.
func BundledAssets() fs.FS {
	sub, err := fs.Sub(bundled, "assets")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// LoadBootstrapScript reads BootstrapAsset from fsys. The script must be
// non-empty UTF-8; it is returned unmodified.
func LoadBootstrapScript(fsys fs.FS) (string, error) {
	if fsys == nil {
		return "", fmt.Errorf("%w: no assets", ErrBootstrapUnavailable)
	}
	data, err := fs.ReadFile(fsys, BootstrapAsset)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBootstrapUnavailable, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrBootstrapUnavailable, BootstrapAsset)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrBootstrapUnavailable, BootstrapAsset)
	}
	return string(data), nil
}
