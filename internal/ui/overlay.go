// Package ui provides compositing helpers for floating overlays: the mention
// picker, the slash menu, and the debounced toolbars, all anchored to
// document coordinates instead of centered like a modal.
package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		w := ansi.StringWidth(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// compositeRow overlays overlayLine onto bgLine at startX, keeping the
// background's own styling on both sides.
func compositeRow(bgLine, overlayLine string, startX, overlayWidth int) string {
	var result strings.Builder

	if startX > 0 {
		left := ansi.Truncate(bgLine, startX, "")
		result.WriteString(left)
		if pad := startX - ansi.StringWidth(left); pad > 0 {
			result.WriteString(strings.Repeat(" ", pad))
		}
	}

	result.WriteString(overlayLine)

	rightStart := startX + overlayWidth
	if bgWidth := ansi.StringWidth(bgLine); bgWidth > rightStart {
		result.WriteString(ansi.Cut(bgLine, rightStart, bgWidth))
	}

	return result.String()
}

// OverlayAt composites overlay onto background with its top-left corner at
// (x, y). The box is clamped to the viewport; when it would run off the
// bottom it flips above the anchor row.
func OverlayAt(background, overlay string, x, y, width, height int) string {
	bgLines := strings.Split(background, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := maxLineWidth(overlayLines)
	overlayHeight := len(overlayLines)

	if x+overlayWidth > width {
		x = width - overlayWidth
	}
	if x < 0 {
		x = 0
	}
	if y+overlayHeight > height {
		// Flip above the anchor: y was the row below it.
		y = y - overlayHeight - 1
	}
	if y < 0 {
		y = 0
	}

	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	result := make([]string, 0, len(bgLines))
	for row, bgLine := range bgLines {
		idx := row - y
		if idx >= 0 && idx < overlayHeight {
			result = append(result, compositeRow(bgLine, overlayLines[idx], x, overlayWidth))
		} else {
			result = append(result, bgLine)
		}
	}

	return strings.Join(result, "\n")
}
