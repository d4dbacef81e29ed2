// Package outwriter has console and file output logic for leaderboards,
// alerts and the daily view.
package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// writeWithFile runs a writer against the configured destination, which is
// stdout when no output file is set.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// maxCommentWidth returns how much room the table has for the trailing
// comment column, from the width override or the detected terminal size.
func maxCommentWidth(widthOverride int) int {
	termWidth := widthOverride
	if termWidth == 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			termWidth = 120 // conservative default for CI and pipes
		} else {
			termWidth = detected
		}
	}

	// Reserve space for the fixed columns plus borders and padding.
	available := termWidth - 100
	if available < 10 {
		return 10
	}
	if available > maxCommentDisplay {
		return maxCommentDisplay
	}
	return available
}

// maxCommentDisplay caps the comment column even on wide terminals.
const maxCommentDisplay = 60
