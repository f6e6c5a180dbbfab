package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramAlerter delivers market alerts to a running program as AlertMsg.
// Alerts raised before Attach are buffered and flushed on attach.
type ProgramAlerter struct {
	mu      sync.Mutex
	program *tea.Program
	pending []string
}

// Alert implements contracts.Alerter.
func (a *ProgramAlerter) Alert(msg string) {
	a.mu.Lock()
	p := a.program
	if p == nil {
		a.pending = append(a.pending, msg)
	}
	a.mu.Unlock()

	if p != nil {
		p.Send(AlertMsg{Text: msg})
	}
}

// Attach routes alerts to p.
func (a *ProgramAlerter) Attach(p *tea.Program) {
	a.mu.Lock()
	a.program = p
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(pending) > 0 {
		// Send blocks until the program starts.
		go func() {
			for _, msg := range pending {
				p.Send(AlertMsg{Text: msg})
			}
		}()
	}
}

// Detach stops delivery; later alerts are buffered again.
func (a *ProgramAlerter) Detach() {
	a.mu.Lock()
	a.program = nil
	a.mu.Unlock()
}

// Pending returns alerts buffered while no program was attached.
func (a *ProgramAlerter) Pending() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.pending...)
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
// alerter and prompter may be nil.
func Run(ctx context.Context, m Model, alerter *ProgramAlerter, prompter *PassphrasePrompter) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if alerter != nil {
		alerter.Attach(p)
		defer alerter.Detach()
	}
	if prompter != nil {
		prompter.Attach(p)
		defer prompter.Detach()
	}

	if m.market.HasWallet() {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() { _ = m.market.WatchAccounts(watchCtx) }()
	}

	_, err := p.Run()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return err
}

// DefaultDebounce is the search bar delay.
const DefaultDebounce = time.Second
