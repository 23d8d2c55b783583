package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmPhrase must be typed to approve a calibration.
const ConfirmPhrase = "CALIBRATE"

// Confirm displays a warning box and prompts the user to type ConfirmPhrase.
// Returns true if the user confirmed.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string) bool {
	width := GetTerminalWidth()

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)), ""}
	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	_, _ = fmt.Fprintln(out, boxStyle(WarningColor, width).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprintln(out)

	promptStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", ConfirmPhrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.TrimSpace(input) == ConfirmPhrase {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Calibration cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// ConfirmZeroCalibration asks before a zero point calibration.
func ConfirmZeroCalibration(in io.Reader, out io.Writer) bool {
	return Confirm(in, out, "ZERO POINT CALIBRATION", []string{
		"The sensor will treat the current air as 400ppm",
		"Run it outdoors or in a well ventilated room only",
		"The sensor should have been powered in that air for at least 20 minutes",
	})
}

// ConfirmSpanCalibration asks before a span point calibration.
func ConfirmSpanCalibration(in io.Reader, out io.Writer, ppm int) bool {
	return Confirm(in, out, "SPAN POINT CALIBRATION", []string{
		fmt.Sprintf("The sensor will treat the current gas as %dppm", ppm),
		"Calibrate the zero point first",
		"The sensor must sit in the reference gas for at least 20 minutes",
	})
}
