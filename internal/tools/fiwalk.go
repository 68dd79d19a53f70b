package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fiwalk writes DFXML for a disk image.
type Fiwalk struct {
	Command
}

// Args returns the argument list for writing the DFXML of image to out.
func (f Fiwalk) Args(image, out string) []string {
	return []string{"-X", out, image}
}

// DFXML writes the DFXML description of image to out.
func (f Fiwalk) DFXML(ctx context.Context, image, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create DFXML directory: %w", err)
	}
	return f.run(ctx, f.Args(image, out), io.Discard)
}
