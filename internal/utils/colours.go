package utils

import "github.com/charmbracelet/lipgloss"

// ColourScheme holds the Catppuccin Mocha colours the contact book draws with.
type ColourScheme struct {
	Red      string
	Peach    string
	Yellow   string
	Green    string
	Blue     string
	Lavender string
	Text     string
	Subtext1 string
	Subtext0 string
	Overlay1 string
	Surface1 string
	Surface0 string
	Base     string
}

var Colours = ColourScheme{
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Blue:     "#89b4fa",
	Lavender: "#b4befe",
	Text:     "#cdd6f4",
	Subtext1: "#bac2de",
	Subtext0: "#a6adc8",
	Overlay1: "#7f849c",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

// Fg is a style with only the foreground set.
func Fg(colour string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colour))
}

// ErrorStyle, SuccessStyle and HintStyle are the message styles shared by every screen.
func ErrorStyle() lipgloss.Style {
	return Fg(Colours.Red).Bold(true)
}

func SuccessStyle() lipgloss.Style {
	return Fg(Colours.Green).Bold(true)
}

func HintStyle() lipgloss.Style {
	return Fg(Colours.Overlay1)
}
