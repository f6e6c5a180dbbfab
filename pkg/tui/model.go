// Package tui is the terminal front end of the marketplace: explore, listed,
// owned, create and details pages driven by a market.Market.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DeBrosOfficial/lostsouls/pkg/market"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/tui/nav"
)

// Empty-state texts.
const (
	MsgNoListings = "No NFTs listed for sale"
	MsgNoOwned    = "No NFTs owned"
)

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	market *market.Market

	route  nav.Route
	back   nav.Route
	active string

	account  string
	fetching bool
	busy     bool

	collection *nft.Collection
	search     SearchBar
	spinner    spinner.Model
	cursor     int

	form    createForm
	details detailsPage

	alert    string
	alertSeq int

	prompt *passphrasePrompt

	events      <-chan market.Event
	unsubscribe func()

	width  int
	height int
}

// NewModel builds the model on the explore page. debounce is the search delay.
func NewModel(ctx context.Context, mk *market.Market, debounce time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = focusedStyle

	events, unsubscribe := mk.Subscribe()
	return Model{
		ctx:         ctx,
		market:      mk,
		route:       nav.RouteExplore,
		active:      nav.LabelExplore,
		account:     mk.CurrentAccount(),
		fetching:    true,
		collection:  nft.NewCollection(nil),
		search:      NewSearchBar(debounce),
		spinner:     s,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Route returns the current page.
func (m Model) Route() nav.Route { return m.route }

// Account returns the account shown in the navbar.
func (m Model) Account() string { return m.account }

// Alert returns the visible banner text.
func (m Model) Alert() string { return m.alert }

// Init starts the wallet check, the first fetch and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		checkWalletCmd(m.ctx, m.market),
		fetchCmd(m.ctx, m.market, m.route),
		waitEventCmd(m.events),
	)
}

func isListingRoute(r nav.Route) bool {
	return r == nav.RouteExplore || r == nav.RouteListed || r == nav.RouteMine
}

// navigate enters route. Leaving a page drops its search term, sort and
// dropdown state. Protected pages without an account start a connection and
// land on explore.
func (m Model) navigate(route nav.Route) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	d := nav.CheckActive(route, m.account)
	if d.Connect {
		cmds = append(cmds, connectCmd(m.ctx, m.market))
		route = d.Redirect
		d = nav.CheckActive(route, m.account)
	}

	if m.route != nav.RouteDetails {
		m.back = m.route
	}
	m.route = route
	m.active = d.Active
	m.search = m.search.Reset()
	m.collection.ClearSearch()
	m.collection.SetSort(nft.SortRecent)
	m.cursor = 0

	switch {
	case isListingRoute(route):
		m.fetching = true
		m.collection.Replace(nil)
		cmds = append(cmds, fetchCmd(m.ctx, m.market, route), m.spinner.Tick)
	case route == nav.RouteCreate:
		m.form = newCreateForm(m.market.Currency())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) showAlert(text string) (Model, tea.Cmd) {
	m.alert = text
	m.alertSeq++
	return m, clearAlertCmd(m.alertSeq)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AlertMsg:
		return m.showAlert(msg.Text)

	case clearAlertMsg:
		if msg.seq == m.alertSeq {
			m.alert = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.fetching && !m.busy && !m.form.uploading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			return m, nil
		}
		return m.handleEvent(msg.event)

	case walletCheckedMsg:
		return m, nil

	case connectedMsg:
		if msg.err == nil {
			m.account = msg.account
		}
		return m, nil

	case listingsMsg:
		if msg.route != m.route {
			return m, nil
		}
		m.fetching = false
		if msg.err != nil {
			return m, nil
		}
		m.collection.Replace(msg.records)
		m.collection.Search(m.search.Term())
		m.collection.SetSort(m.search.Sort())
		m.cursor = 0
		return m, nil

	case uploadedMsg:
		m.form.uploading = false
		if msg.err != nil {
			m.form.err = "upload failed: " + msg.err.Error()
			return m, nil
		}
		m.form.err = ""
		m.form.fileURL = msg.url
		var cmd tea.Cmd
		m.form, cmd = m.form.setFocus(fieldName)
		return m, cmd

	case createdMsg:
		if msg.err != nil {
			return m, nil
		}
		return m.navigate(nav.RouteExplore)

	case purchasedMsg:
		if msg.err != nil {
			return m, nil
		}
		return m.navigate(nav.RouteMine)

	case resoldMsg:
		if msg.err != nil {
			return m, nil
		}
		return m.navigate(nav.RouteExplore)

	case SearchMsg:
		if msg.Term == "" {
			m.collection.ClearSearch()
		} else {
			m.collection.Search(msg.Term)
		}
		m.cursor = 0
		return m, nil

	case SortMsg:
		m.collection.SetSort(msg.Key)
		m.cursor = 0
		return m, nil

	case passphraseMsg:
		if m.prompt != nil {
			m.prompt.answer("", ErrPassphraseCancelled)
		}
		m.prompt = newPassphrasePrompt(msg)
		return m, textinput.Blink

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchTickMsg:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	// Cursor blinks go to whichever input is on screen.
	var cmd tea.Cmd
	if m.prompt != nil {
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return m, cmd
	}
	switch m.route {
	case nav.RouteCreate:
		m.form, cmd = m.form.update(msg)
	case nav.RouteDetails:
		m.details.resell, cmd = m.details.resell.Update(msg)
	default:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEvent(ev market.Event) (Model, tea.Cmd) {
	next := waitEventCmd(m.events)
	switch ev.Type {
	case market.EventAccountChanged:
		m.account = ev.Account
		if ev.Account == "" && nav.Protected(m.route) {
			var cmd tea.Cmd
			m, cmd = m.navigate(nav.RouteExplore)
			return m, tea.Batch(next, cmd)
		}
	case market.EventLoadingChanged:
		m.busy = ev.Loading
		if m.busy {
			return m, tea.Batch(next, m.spinner.Tick)
		}
	case market.EventReset:
		m.busy = m.market.IsLoading()
		m.fetching = false
		m.form.uploading = false
	}
	return m, next
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		if m.prompt != nil {
			m.prompt.answer("", ErrPassphraseCancelled)
			m.prompt = nil
		}
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	}
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}

	switch m.route {
	case nav.RouteCreate:
		return m.handleCreateKey(msg)
	case nav.RouteDetails:
		if m.details.resell.Focused() {
			return m.handleResellKey(msg)
		}
	}

	if m.search.Focused() {
		switch key {
		case "esc", "enter", "tab":
			m.search = m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	if m.search.SortOpen() {
		switch key {
		case "up", "k":
			m.search = m.search.MoveSort(-1)
		case "down", "j":
			m.search = m.search.MoveSort(1)
		case "enter":
			var cmd tea.Cmd
			m.search, cmd = m.search.SelectSort()
			return m, cmd
		case "esc", "s":
			m.search = m.search.ToggleSort()
		}
		return m, nil
	}

	switch key {
	case "q":
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case "1":
		return m.navigate(nav.RouteExplore)
	case "2":
		return m.navigate(nav.RouteListed)
	case "3":
		return m.navigate(nav.RouteMine)
	case "c":
		if m.account == "" {
			return m, connectCmd(m.ctx, m.market)
		}
		return m.navigate(nav.RouteCreate)
	}

	if m.route == nav.RouteDetails {
		return m.handleDetailsKey(key)
	}

	switch key {
	case "/":
		var cmd tea.Cmd
		m.search, cmd = m.search.Focus()
		return m, cmd
	case "s":
		m.search = m.search.ToggleSort()
	case "r":
		return m.navigate(m.route)
	case "left", "h", "right", "l", "up", "k", "down", "j":
		m.cursor = moveCursor(m.cursor, len(m.collection.View()), key)
	case "enter":
		view := m.collection.View()
		if m.cursor < len(view) {
			return m.openDetails(view[m.cursor])
		}
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.prompt.answer(m.prompt.input.Value(), nil)
		m.prompt = nil
		return m, nil
	case "esc":
		m.prompt.answer("", ErrPassphraseCancelled)
		m.prompt = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return m, cmd
}

func (m Model) openDetails(record nft.Record) (tea.Model, tea.Cmd) {
	m.back = m.route
	m.route = nav.RouteDetails
	m.active = nav.CheckActive(nav.RouteDetails, m.account).Active
	m.search = m.search.Reset()
	m.details = newDetailsPage(record, m.market.Currency())
	return m, nil
}

func (m Model) handleDetailsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		back := m.back
		if back == "" || back == nav.RouteDetails {
			back = nav.RouteExplore
		}
		return m.navigate(back)
	case "e":
		if m.details.canResell(m.account) {
			return m, m.details.resell.Focus()
		}
	case "enter", "b":
		if m.busy {
			return m, nil
		}
		if m.details.canResell(m.account) {
			return m.submitResell()
		}
		if m.details.record.SoldBy(m.account) {
			return m.showAlert(MsgOwnNFT)
		}
		return m, purchaseCmd(m.ctx, m.market, m.details.record)
	}
	return m, nil
}

func (m Model) handleResellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.details.resell.Blur()
		return m, nil
	case "enter":
		m.details.resell.Blur()
		return m.submitResell()
	}
	var cmd tea.Cmd
	m.details.resell, cmd = m.details.resell.Update(msg)
	return m, cmd
}

func (m Model) submitResell() (tea.Model, tea.Cmd) {
	price := strings.TrimSpace(m.details.resell.Value())
	return m, resellCmd(m.ctx, m.market, m.details.record.TokenID, price)
}

func (m Model) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		return m.navigate(nav.RouteExplore)
	case "tab", "down":
		m.form, cmd = m.form.setFocus(m.form.focus + 1)
		return m, cmd
	case "shift+tab", "up":
		m.form, cmd = m.form.setFocus(m.form.focus - 1)
		return m, cmd
	case "enter":
		switch m.form.focus {
		case fieldFile:
			path := m.form.value(fieldFile)
			if path == "" || m.form.uploading {
				return m, nil
			}
			m.form.uploading = true
			m.form.err = ""
			return m, tea.Batch(uploadCmd(m.ctx, m.market, path), m.spinner.Tick)
		case fieldPrice:
			if m.busy {
				return m, nil
			}
			return m, createCmd(m.ctx, m.market, m.form.input())
		default:
			m.form, cmd = m.form.setFocus(m.form.focus + 1)
			return m, cmd
		}
	}
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) navbar() string {
	items := make([]string, 0, len(nav.Menu)+2)
	items = append(items, titleStyle.UnsetMarginBottom().Render("LostSouls"))
	for i, item := range nav.Menu {
		label := string(rune('1'+i)) + " " + item.Label
		if item.Label == m.active {
			items = append(items, activeMenuStyle.Render("["+label+"]"))
		} else {
			items = append(items, blurredStyle.Render(" "+label+" "))
		}
	}
	items = append(items, buttonStyle.Render("c "+nav.ActionLabel(m.account)))
	if m.account != "" {
		items = append(items, subtitleStyle.Render(nft.ShortenAddress(m.account)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, joinSpaced(items)...)
}

func joinSpaced(items []string) []string {
	out := make([]string, 0, 2*len(items))
	for i, it := range items {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, it)
	}
	return out
}

// View renders the current page.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.navbar() + "\n\n")
	if m.alert != "" {
		s.WriteString(errorStyle.Render("! "+m.alert) + "\n\n")
	}

	if m.prompt != nil {
		s.WriteString(m.prompt.View())
		return s.String()
	}

	switch m.route {
	case nav.RouteCreate:
		s.WriteString(m.form.View())
		if m.busy {
			s.WriteString("\n" + m.spinner.View() + " creating listing...")
		}
	case nav.RouteDetails:
		s.WriteString(m.details.View(m.account, m.market.Currency(), m.busy))
		if m.busy {
			s.WriteString("\n" + m.spinner.View())
		}
	default:
		s.WriteString(m.listingView())
	}
	return s.String()
}

func (m Model) listingView() string {
	var s strings.Builder
	s.WriteString(m.search.View() + "\n\n")

	view := m.collection.View()
	switch {
	case m.fetching:
		s.WriteString(m.spinner.View() + " loading...")
	case m.collection.Len() == 0:
		if m.route == nav.RouteMine {
			s.WriteString(subtitleStyle.Render(MsgNoOwned))
		} else {
			s.WriteString(subtitleStyle.Render(MsgNoListings))
		}
	default:
		onProfile := m.route == nav.RouteMine
		s.WriteString(renderCards(view, m.cursor, m.market.Currency(), onProfile))
	}

	s.WriteString(helpStyle.Render("\n1/2/3 pages • / search • s sort • ←↑↓→ move • Enter details • r refresh • q quit"))
	return s.String()
}
