package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

func typeRunes(s SearchBar, text string) SearchBar {
	for _, r := range text {
		s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return s
}

func TestSearchBar_Debounce(t *testing.T) {
	s := NewSearchBar(50 * time.Millisecond)
	s, _ = s.Focus()

	s, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("keystroke should start a timer")
	}
	if s.State() != SearchDebouncing {
		t.Fatalf("state = %v, want debouncing", s.State())
	}
	s = typeRunes(s, "ou")

	// Timers from earlier keystrokes are stale.
	for seq := 1; seq < s.seq; seq++ {
		var stale tea.Cmd
		s, stale = s.Update(searchTickMsg{seq: seq, term: "so"[:seq]})
		if stale != nil {
			t.Fatalf("tick %d should be ignored", seq)
		}
	}
	if s.Term() != "" || s.State() != SearchDebouncing {
		t.Fatalf("stale ticks committed %q", s.Term())
	}

	s, cmd = s.Update(searchTickMsg{seq: s.seq, term: "sou"})
	if cmd == nil {
		t.Fatal("latest tick should commit")
	}
	msg, ok := cmd().(SearchMsg)
	if !ok || msg.Term != "sou" {
		t.Fatalf("got %#v, want SearchMsg{sou}", cmd())
	}
	if s.State() != SearchCommitted || s.Term() != "sou" {
		t.Errorf("state=%v term=%q", s.State(), s.Term())
	}
}

func TestSearchBar_IgnoresKeysWhenBlurred(t *testing.T) {
	s := NewSearchBar(time.Second)
	s, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil || s.State() != SearchIdle {
		t.Error("blurred bar should not react to typing")
	}
}

func TestSearchBar_ResetDropsPendingTimer(t *testing.T) {
	s := NewSearchBar(time.Second)
	s, _ = s.Focus()
	s = typeRunes(s, "ghost")
	pending := s.seq

	s = s.Reset()
	s, cmd := s.Update(searchTickMsg{seq: pending, term: "ghost"})
	if cmd != nil {
		t.Error("timer from before reset should not commit")
	}
	if s.Term() != "" || s.State() != SearchIdle || s.Focused() {
		t.Errorf("reset left state=%v term=%q focused=%v", s.State(), s.Term(), s.Focused())
	}
}

func TestSearchBar_Sort(t *testing.T) {
	s := NewSearchBar(time.Second).ToggleSort()
	if !s.SortOpen() {
		t.Fatal("dropdown should open")
	}

	s = s.MoveSort(1)
	s, cmd := s.SelectSort()
	if s.SortOpen() {
		t.Error("selecting should close the dropdown")
	}
	if got := cmd().(SortMsg); got.Key != nft.SortPriceAsc {
		t.Errorf("selected %v, want %v", got.Key, nft.SortPriceAsc)
	}

	s = s.ToggleSort().MoveSort(-2)
	s, cmd = s.SelectSort()
	if got := cmd().(SortMsg); got.Key != nft.SortPriceDesc {
		t.Errorf("wrapped selection = %v, want %v", got.Key, nft.SortPriceDesc)
	}
	if s.Sort() != nft.SortPriceDesc {
		t.Errorf("Sort() = %v", s.Sort())
	}
}

// tickTerm runs cmd and returns the term of the debounce tick it schedules.
func tickTerm(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command")
	}
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, msg := range msgs {
		if tick, ok := msg.(searchTickMsg); ok {
			return tick.term
		}
	}
	t.Fatalf("no debounce tick in %#v", msgs)
	return ""
}

func TestSearchBar_KeepsSpaces(t *testing.T) {
	s := NewSearchBar(time.Millisecond)
	s, _ = s.Focus()
	s = typeRunes(s, "soul")

	s, cmd := s.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if got := tickTerm(t, cmd); got != "soul " {
		t.Fatalf("tick term = %q, want %q", got, "soul ")
	}

	s, cmd = s.Update(searchTickMsg{seq: s.seq, term: "soul "})
	if msg := cmd().(SearchMsg); msg.Term != "soul " {
		t.Errorf("committed %q", msg.Term)
	}
}
