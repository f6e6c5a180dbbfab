package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// SearchState is the debounce state of the search bar.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchDebouncing
	SearchCommitted
)

// SearchMsg is emitted when a search term is committed. An empty Term asks
// the page to clear the filter.
type SearchMsg struct {
	Term string
}

// SortMsg is emitted when a sort entry is picked from the dropdown.
type SortMsg struct {
	Key nft.SortKey
}

type searchTickMsg struct {
	seq  int
	term string
}

// SearchBar is a text input whose value is committed only after the user
// stops typing for the debounce period, plus the sort dropdown next to it.
type SearchBar struct {
	input    textinput.Model
	debounce time.Duration
	seq      int
	state    SearchState
	term     string

	sortOpen   bool
	sortCursor int
	sort       nft.SortKey
}

// NewSearchBar creates a search bar with the given debounce delay.
func NewSearchBar(debounce time.Duration) SearchBar {
	if debounce <= 0 {
		debounce = time.Second
	}
	ti := textinput.New()
	ti.Placeholder = "Search NFT here..."
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "⌕ "
	return SearchBar{input: ti, debounce: debounce}
}

// State returns the debounce state.
func (s SearchBar) State() SearchState { return s.state }

// Term returns the last committed term.
func (s SearchBar) Term() string { return s.term }

// Sort returns the active sort key.
func (s SearchBar) Sort() nft.SortKey { return s.sort }

// SortOpen reports whether the dropdown is open.
func (s SearchBar) SortOpen() bool { return s.sortOpen }

// Focused reports whether the text input has focus.
func (s SearchBar) Focused() bool { return s.input.Focused() }

// Focus gives the text input focus.
func (s SearchBar) Focus() (SearchBar, tea.Cmd) {
	s.sortOpen = false
	return s, s.input.Focus()
}

// Blur removes focus from the text input.
func (s SearchBar) Blur() SearchBar {
	s.input.Blur()
	return s
}

// Reset clears the input, the committed term and the dropdown.
func (s SearchBar) Reset() SearchBar {
	s.input.Reset()
	s.input.Blur()
	s.seq++
	s.state = SearchIdle
	s.term = ""
	s.sortOpen = false
	s.sortCursor = 0
	s.sort = nft.SortRecent
	return s
}

// ToggleSort opens or closes the dropdown.
func (s SearchBar) ToggleSort() SearchBar {
	s.sortOpen = !s.sortOpen
	s.sortCursor = int(s.sort)
	return s
}

// MoveSort moves the dropdown cursor by delta.
func (s SearchBar) MoveSort(delta int) SearchBar {
	n := len(nft.SortKeys)
	s.sortCursor = ((s.sortCursor+delta)%n + n) % n
	return s
}

// SelectSort picks the entry under the cursor and closes the dropdown.
func (s SearchBar) SelectSort() (SearchBar, tea.Cmd) {
	s.sort = nft.SortKeys[s.sortCursor]
	s.sortOpen = false
	key := s.sort
	return s, func() tea.Msg { return SortMsg{Key: key} }
}

// Update handles typing and debounce ticks.
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	switch msg := msg.(type) {
	case searchTickMsg:
		// Only the timer started by the latest keystroke commits.
		if msg.seq != s.seq {
			return s, nil
		}
		s.state = SearchCommitted
		s.term = msg.term
		return s, func() tea.Msg { return SearchMsg{Term: msg.term} }

	case tea.KeyMsg:
		if !s.input.Focused() {
			return s, nil
		}
		before := s.input.Value()
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if s.input.Value() == before {
			return s, cmd
		}

		s.seq++
		s.state = SearchDebouncing
		seq, term := s.seq, s.input.Value()
		tick := tea.Tick(s.debounce, func(time.Time) tea.Msg {
			return searchTickMsg{seq: seq, term: term}
		})
		return s, tea.Batch(cmd, tick)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// View renders the input and the dropdown.
func (s SearchBar) View() string {
	var b strings.Builder
	b.WriteString(s.input.View())
	b.WriteString("   ")

	arrow := "▾"
	if s.sortOpen {
		arrow = "▴"
	}
	b.WriteString(focusedStyle.Render(s.sort.String() + " " + arrow))

	if s.sortOpen {
		b.WriteString("\n")
		for i, key := range nft.SortKeys {
			if i == s.sortCursor {
				b.WriteString(cursorStyle.Render("  → ") + focusedStyle.Render(key.String()) + "\n")
			} else {
				b.WriteString("    " + blurredStyle.Render(key.String()) + "\n")
			}
		}
	}
	return b.String()
}
