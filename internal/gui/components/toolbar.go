package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type Toolbar struct {
	container      *fyne.Container
	SaveButton     *widget.Button
	strategySelect *widget.Select
	description    *widget.Label

	imageSaveHandler      func()
	strategyChangeHandler func(string)
	syncing               bool
}

func NewToolbar(strategies []string) *Toolbar {
	t := &Toolbar{}

	t.SaveButton = widget.NewButton("Save (s)", func() {
		if t.imageSaveHandler != nil {
			t.imageSaveHandler()
		}
	})
	t.SaveButton.Importance = widget.HighImportance

	t.strategySelect = widget.NewSelect(strategies, func(name string) {
		if t.syncing || t.strategyChangeHandler == nil {
			return
		}
		t.strategyChangeHandler(name)
	})
	t.description = widget.NewLabel("")
	t.description.Truncation = fyne.TextTruncateEllipsis

	t.container = container.NewBorder(
		nil, nil,
		container.NewHBox(widget.NewLabel("Strategy:"), t.strategySelect),
		t.SaveButton,
		t.description,
	)
	return t
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetImageSaveHandler(handler func()) {
	t.imageSaveHandler = handler
}

func (t *Toolbar) SetStrategyChangeHandler(handler func(string)) {
	t.strategyChangeHandler = handler
}

// ShowStrategy selects name without firing the change handler.
func (t *Toolbar) ShowStrategy(name, description string) {
	t.syncing = true
	t.strategySelect.SetSelected(name)
	t.syncing = false
	t.description.SetText(description)
}
