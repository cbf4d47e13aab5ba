package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeOutput writes one model's LookML file, creating parent directories
// as needed. Workers write disjoint paths, so plain WriteFile atomicity at
// the filesystem level is sufficient.
func writeOutput(out *ModelOutput) error {
	dir := filepath.Dir(out.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(out.Path, []byte(out.Contents), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out.Path, err)
	}
	return nil
}
