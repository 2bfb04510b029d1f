package outwriter

import (
	"os"

	"github.com/huangsam/flowstate/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getHeatmapSpan returns how many hours share one heatmap column so the grid fits in width.
func getHeatmapSpan(width int) int {
	// Day label column plus borders
	baseWidth := 16

	for _, span := range []int{1, 2, 3} {
		columns := 24 / span
		if baseWidth+columns*4 <= width { // cell, padding and separator
			return span
		}
	}
	return 4
}
