package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorMarkX   = lipgloss.Color("#3b82f6")
	ColorMarkO   = lipgloss.Color("#f59e0b")
)

// Game backgrounds rotate by game id.
var gameColors = []lipgloss.Color{
	lipgloss.Color("#1f2937"),
	lipgloss.Color("#1e3a8a"),
	lipgloss.Color("#14532d"),
	lipgloss.Color("#4c1d95"),
	lipgloss.Color("#7c2d12"),
}

var (
	styleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	styleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	styleCell = lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center)

	styleCursor = styleCell.
		Reverse(true)

	styleWinCell = styleCell.
		Bold(true).
		Background(ColorHealthy).
		Foreground(ColorBright)

	styleBoard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	styleYourTurn = styleBoard.
		BorderForeground(ColorHealthy)

	styleScores = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
)

func markColor(mark string) lipgloss.Color {
	switch mark {
	case "X":
		return ColorMarkX
	case "O":
		return ColorMarkO
	default:
		return ColorDimmed
	}
}

func gameColor(gameID int) lipgloss.Color {
	if gameID < 0 {
		gameID = -gameID
	}

	return gameColors[gameID%len(gameColors)]
}
