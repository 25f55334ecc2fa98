// Package ui holds the terminal styling shared by pidash's one-shot
// commands: the ANSI palette, status symbols, a request spinner, static
// tables and percentage sparklines (also drawn by the dashboard).
//
// Colour is switched off with ConfigureColors, which honours --no-color,
// NO_COLOR and non-terminal output by moving lipgloss to the ASCII profile.
package ui
