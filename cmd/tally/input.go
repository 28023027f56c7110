package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"textrecords/internal/validation"
)

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	maxBytes, err := cmd.Flags().GetInt("max-bytes")
	if err != nil {
		return "", err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	if maxBytes > 0 {
		r = io.LimitReader(r, int64(maxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	text := string(data)
	if valid, msg := validation.ValidateText(text, maxBytes); !valid {
		return "", fmt.Errorf("%s", msg)
	}
	return text, nil
}
