package contracts

// Alerter surfaces a message to the user: a banner in the terminal UI, a line
// on stderr for CLI commands.
type Alerter interface {
	Alert(msg string)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(msg string)

// Alert calls f(msg).
func (f AlerterFunc) Alert(msg string) { f(msg) }
