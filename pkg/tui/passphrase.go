package tui

import (
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// ErrPassphraseCancelled is returned when the prompt is dismissed or the UI
// exits before an answer.
var ErrPassphraseCancelled = errors.New("passphrase entry cancelled")

// errNoProgram is returned when no UI is attached to ask.
var errNoProgram = errors.New("terminal UI is not running")

type passphraseReply struct {
	passphrase string
	err        error
}

// passphraseMsg asks the model to prompt for the passphrase of account.
type passphraseMsg struct {
	account string
	reply   chan<- passphraseReply
}

// passphrasePrompt is the modal shown while a keystore account is unlocked.
type passphrasePrompt struct {
	account string
	input   textinput.Model
	reply   chan<- passphraseReply
}

func newPassphrasePrompt(msg passphraseMsg) *passphrasePrompt {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Placeholder = "keystore passphrase"
	ti.EchoMode = textinput.EchoPassword
	return &passphrasePrompt{account: msg.account, input: ti, reply: msg.reply}
}

// answer delivers the result once; reply is buffered.
func (p *passphrasePrompt) answer(passphrase string, err error) {
	p.reply <- passphraseReply{passphrase: passphrase, err: err}
}

func (p *passphrasePrompt) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Unlock wallet") + "\n")
	s.WriteString("Passphrase for " + nft.ShortenAddress(p.account) + ":\n\n")
	s.WriteString(p.input.View())
	s.WriteString(helpStyle.Render("\nEnter to unlock • Esc to cancel"))
	return boxStyle.Render(s.String())
}

// PassphrasePrompter asks for keystore passphrases inside the running UI,
// so nothing else reads the terminal while bubbletea owns it.
type PassphrasePrompter struct {
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// Attach routes prompts to p.
func (pp *PassphrasePrompter) Attach(p *tea.Program) {
	pp.mu.Lock()
	pp.program = p
	pp.done = make(chan struct{})
	pp.mu.Unlock()
}

// Detach cancels waiting prompts; later requests fail.
func (pp *PassphrasePrompter) Detach() {
	pp.mu.Lock()
	if pp.done != nil {
		close(pp.done)
	}
	pp.program = nil
	pp.done = nil
	pp.mu.Unlock()
}

// Passphrase implements wallet.PassphraseFunc. It blocks until the user
// answers, cancels or the UI exits.
func (pp *PassphrasePrompter) Passphrase(account common.Address) (string, error) {
	pp.mu.Lock()
	p, done := pp.program, pp.done
	pp.mu.Unlock()
	if p == nil {
		return "", errNoProgram
	}

	reply := make(chan passphraseReply, 1)
	p.Send(passphraseMsg{account: account.Hex(), reply: reply})
	select {
	case r := <-reply:
		return r.passphrase, r.err
	case <-done:
		return "", ErrPassphraseCancelled
	}
}
