package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pinset-io/pinset/internal/checker"
	"github.com/pinset-io/pinset/internal/manifest"
	"github.com/pinset-io/pinset/internal/parser"
)

// loadManifest parses the manifest at path, converting parse errors into
// checker findings so commands report everything through one channel.
//
// The returned error is non-nil only for I/O-level failures (missing
// file, unreadable file); those map to ExitCommandError at the call site.
func loadManifest(path string, mode parser.Mode) (*manifest.Manifest, []checker.ValidationError, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("manifest not found: %s", path)
		}
		return nil, nil, fmt.Errorf("accessing manifest: %w", err)
	}

	m, parseErrs := parser.ParseFile(path, mode)
	if m == nil {
		if len(parseErrs) > 0 {
			return nil, nil, parseErrs[0]
		}
		return nil, nil, fmt.Errorf("parsing manifest %s failed", path)
	}

	var findings []checker.ValidationError
	for _, err := range parseErrs {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			findings = append(findings, checker.ValidationError{
				Field:   "parse",
				Message: pe.Msg,
				Code:    checker.ErrParse,
				Line:    pe.Line,
			})
			continue
		}
		findings = append(findings, checker.ValidationError{
			Field:   "parse",
			Message: err.Error(),
			Code:    checker.ErrParse,
		})
	}
	return m, findings, nil
}
