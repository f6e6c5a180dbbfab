package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

const cardsPerRow = 3

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderCard(r nft.Record, currency string, selected, onProfile bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.UnsetMarginBottom().Render(truncate(r.Name, 24)) + "\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("#%d", r.TokenID)) + "\n")
	b.WriteString(focusedStyle.Render(r.Price+" "+currency) + "\n")
	who := r.Seller
	if onProfile {
		who = r.Owner
	}
	b.WriteString(blurredStyle.Render(nft.ShortenAddress(who)))

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(b.String())
}

// renderCards lays records out in rows. cursor indexes the highlighted card.
func renderCards(records []nft.Record, cursor int, currency string, onProfile bool) string {
	var rows []string
	for start := 0; start < len(records); start += cardsPerRow {
		end := min(start+cardsPerRow, len(records))
		cards := make([]string, 0, cardsPerRow)
		for i := start; i < end; i++ {
			cards = append(cards, renderCard(records[i], currency, i == cursor, onProfile))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// moveCursor moves within a cardsPerRow grid of n cards.
func moveCursor(cursor, n int, key string) int {
	if n == 0 {
		return 0
	}
	switch key {
	case "left", "h":
		cursor--
	case "right", "l":
		cursor++
	case "up", "k":
		cursor -= cardsPerRow
	case "down", "j":
		cursor += cardsPerRow
	}
	return max(0, min(cursor, n-1))
}
