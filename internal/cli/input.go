package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to the named file, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// inputLabel names the input for display: the path, or "stdin".
func inputLabel(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

// outputBase strips the extension from path for deriving output file
// names. Stdin input gets the base "stream".
func outputBase(path string) string {
	if path == "" || path == "-" {
		return "stream"
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// argOrEmpty returns the first positional argument, or the empty string
// when the command was invoked without one.
func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
