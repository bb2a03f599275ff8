// Package gui is the Fyne tuning window: a strategy selector, one slider per
// parameter, the 2×2 stage mosaic and a status line.
package gui

import (
	"image"

	"ellipse-detector/internal/gui/components"
	"ellipse-detector/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

type Manager struct {
	mosaic     *components.MosaicDisplay
	toolbar    *components.Toolbar
	parameters *components.ParameterPanel
	status     *components.StatusBar

	saveHandler func()
	quitHandler func()
}

// NewManager builds the widgets. mosaicWidth and mosaicHeight bound the
// displayed mosaic.
func NewManager(window fyne.Window, strategies []string, mosaicWidth, mosaicHeight int) *Manager {
	m := &Manager{
		mosaic:     components.NewMosaicDisplay(mosaicWidth, mosaicHeight),
		toolbar:    components.NewToolbar(strategies),
		parameters: components.NewParameterPanel(),
		status:     components.NewStatusBar(),
	}

	m.toolbar.SetImageSaveHandler(m.onSave)
	window.Canvas().SetOnTypedRune(func(r rune) {
		if r == 's' || r == 'S' {
			m.onSave()
		}
	})
	window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape && m.quitHandler != nil {
			m.quitHandler()
		}
	})
	return m
}

func (m *Manager) onSave() {
	if m.saveHandler != nil {
		m.saveHandler()
	}
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	bottom := container.NewVBox(
		m.parameters.GetContainer(),
		m.status.GetContainer(),
	)
	return container.NewBorder(
		m.toolbar.GetContainer(),
		bottom,
		nil, nil,
		container.NewCenter(m.mosaic.GetContainer()),
	)
}

func (m *Manager) SetImageSaveHandler(handler func()) {
	m.saveHandler = handler
}

func (m *Manager) SetQuitHandler(handler func()) {
	m.quitHandler = handler
}

func (m *Manager) SetStrategyChangeHandler(handler func(string)) {
	m.toolbar.SetStrategyChangeHandler(handler)
}

func (m *Manager) SetParameterChangeHandler(handler func(string, int)) {
	m.parameters.SetParameterChangeHandler(handler)
}

// ShowStrategy rebuilds the toolbar selection and the sliders.
func (m *Manager) ShowStrategy(name, description string, defs []models.ParameterDefinition, values map[string]int) {
	m.toolbar.ShowStrategy(name, description)
	m.parameters.UpdateParameters(defs, values)
}

func (m *Manager) ShowParameterValue(name string, value int) {
	m.parameters.ShowValue(name, value)
}

func (m *Manager) SetMosaic(img image.Image) {
	m.mosaic.SetImage(img)
}

func (m *Manager) UpdateStatus(status string) {
	m.status.SetStatus(status)
}

func (m *Manager) UpdateMetrics(contours, accepted int) {
	m.status.SetMetrics(contours, accepted)
}
