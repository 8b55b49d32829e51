package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

// View renders the full TUI.
func (m Model) View() string {
	title := styleHeader.Render("Tic-Tac-Toe Tournament")
	if who := m.identity(); who != "" {
		title += "  " + styleDimmed.Render(who)
	}

	sections := []string{
		title,
		m.renderConnection() + "  " + m.tournamentStatus,
		m.status,
		m.renderBoard(),
	}

	if m.showScores && len(m.scores) > 0 {
		sections = append(sections, m.renderScores())
	}

	sections = append(sections, styleDimmed.Render(m.help()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) identity() string {
	if m.role == entity.RoleObserver {
		return "observer"
	}

	parts := []string{}
	if m.name != "" {
		parts = append(parts, m.name)
	}

	if m.mark != entity.MarkEmpty {
		parts = append(parts, "playing "+string(m.mark))
	}

	return strings.Join(parts, ", ")
}

func (m Model) renderConnection() string {
	if m.connected {
		return lipgloss.NewStyle().Foreground(ColorHealthy).Render("●")
	}

	return lipgloss.NewStyle().Foreground(ColorDanger).Render("○")
}

func (m Model) renderBoard() string {
	separator := styleDimmed.Render(strings.Repeat("─", 5) + "┼" + strings.Repeat("─", 5) + "┼" + strings.Repeat("─", 5))
	bar := styleDimmed.Render("│")

	rows := make([]string, 0, 5)

	for row := range 3 {
		cells := make([]string, 0, 3)

		for col := range 3 {
			cells = append(cells, m.renderCell(row*3+col))
		}

		rows = append(rows, strings.Join(cells, bar))
		if row < 2 {
			rows = append(rows, separator)
		}
	}

	style := styleBoard
	if m.yourTurn {
		style = styleYourTurn
	}

	if m.hasGame {
		style = style.BorderBackground(gameColor(m.gameID))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderCell(index int) string {
	mark := m.board[index]

	text := styleDimmed.Render(strconv.Itoa(index + 1))
	if mark != entity.MarkEmpty {
		text = lipgloss.NewStyle().Bold(true).Foreground(markColor(string(mark))).Render(string(mark))
	}

	switch {
	case m.winLine.Has(index):
		return styleWinCell.Render(string(mark))
	case m.role == entity.RolePlayer && m.yourTurn && index == m.cursor:
		return styleCursor.Render(text)
	default:
		return styleCell.Render(text)
	}
}

func (m Model) renderScores() string {
	lines := []string{styleHeader.Render(fmt.Sprintf("%-4s %-20s %6s", "#", "Player", "Score"))}

	for i, row := range m.scores {
		lines = append(lines, fmt.Sprintf("%-4d %-20s %6s", i+1, truncate(row.Name, 20), formatScore(row.Score)))
	}

	return styleScores.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) help() string {
	if m.role == entity.RoleObserver {
		return "x:leave  q:quit"
	}

	return "1-9:play  arrows/hjkl:move  enter:play  x:leave  q:quit"
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen-1]) + "…"
}
