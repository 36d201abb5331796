// Package ui holds the pterm helpers used to print tables and coloured text.
package ui

import (
	"github.com/pterm/pterm"
)

// DarkTheme selects the light variants of each colour.
var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

// Highlight renders a in bold with the strongest contrast for the theme.
func Highlight(a any) string {
	if DarkTheme {
		return pterm.Bold.Sprint(pterm.LightWhite(a))
	}

	return pterm.Bold.Sprint(pterm.Black(a))
}
