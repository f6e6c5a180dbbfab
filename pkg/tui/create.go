package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/lostsouls/pkg/market"
)

const (
	fieldFile = iota
	fieldName
	fieldDescription
	fieldPrice
	fieldCount
)

var fieldLabels = [fieldCount]string{"Upload file", "Name", "Description", "Price"}

// createForm is the create-listing page. The file field holds a local path
// that is uploaded on enter; the resulting URL becomes the image.
type createForm struct {
	inputs    [fieldCount]textinput.Model
	focus     int
	fileURL   string
	uploading bool
	err       string
}

func newCreateForm(currency string) createForm {
	var f createForm
	placeholders := [fieldCount]string{
		"path/to/soul.png",
		"NFT name",
		"Description of your NFT",
		"Price in " + currency,
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 50
		f.inputs[i] = ti
	}
	f.inputs[fieldFile].Focus()
	return f
}

func (f createForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

func (f createForm) input() market.ListingInput {
	return market.ListingInput{
		Name:        f.value(fieldName),
		Description: f.value(fieldDescription),
		Price:       f.value(fieldPrice),
		FileURL:     f.fileURL,
	}
}

func (f createForm) setFocus(field int) (createForm, tea.Cmd) {
	f.focus = (field%fieldCount + fieldCount) % fieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f, f.inputs[f.focus].Focus()
}

func (f createForm) update(msg tea.Msg) (createForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f createForm) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Create new NFT") + "\n")

	for i, in := range f.inputs {
		label := fieldLabels[i]
		if i == f.focus {
			s.WriteString(cursorStyle.Render("→ ") + focusedStyle.Render(label) + "\n")
		} else {
			s.WriteString("  " + blurredStyle.Render(label) + "\n")
		}
		s.WriteString("  " + in.View() + "\n")
		if i == fieldFile {
			switch {
			case f.uploading:
				s.WriteString("  " + subtitleStyle.Render("uploading...") + "\n")
			case f.fileURL != "":
				s.WriteString("  " + successStyle.Render("✓ "+f.fileURL) + "\n")
			}
		}
		s.WriteString("\n")
	}

	if f.err != "" {
		s.WriteString(errorStyle.Render("✗ "+f.err) + "\n")
	}
	s.WriteString(buttonStyle.Render("Create NFT") + "\n")
	s.WriteString(helpStyle.Render("Tab/↑/↓ to move • Enter on file to upload • Enter on price to create • Esc to go back"))
	return s.String()
}
