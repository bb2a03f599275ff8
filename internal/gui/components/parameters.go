package components

import (
	"fmt"
	"strconv"

	"ellipse-detector/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ParameterPanel shows one slider per parameter definition. Slider ranges are
// fixed by the definition; values shown are the coerced ones.
type ParameterPanel struct {
	container           *fyne.Container
	parametersContainer *fyne.Container
	sliders             map[string]*widget.Slider
	labels              map[string]*widget.Label
	definitions         map[string]models.ParameterDefinition
	syncing             bool
	onParameterChange   func(string, int)
}

func NewParameterPanel() *ParameterPanel {
	panel := &ParameterPanel{}
	panel.setupPanel()
	return panel
}

func (pp *ParameterPanel) setupPanel() {
	pp.parametersContainer = container.NewVBox()
	pp.container = container.NewVBox(
		widget.NewLabelWithStyle("Parameters", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		pp.parametersContainer,
	)
}

func (pp *ParameterPanel) GetContainer() *fyne.Container {
	return pp.container
}

func (pp *ParameterPanel) SetParameterChangeHandler(handler func(string, int)) {
	pp.onParameterChange = handler
}

// UpdateParameters rebuilds the sliders for a strategy.
func (pp *ParameterPanel) UpdateParameters(defs []models.ParameterDefinition, values map[string]int) {
	pp.parametersContainer.RemoveAll()
	pp.sliders = make(map[string]*widget.Slider, len(defs))
	pp.labels = make(map[string]*widget.Label, len(defs))
	pp.definitions = make(map[string]models.ParameterDefinition, len(defs))

	pp.syncing = true
	for _, def := range defs {
		pp.addSlider(def, values[def.Name])
	}
	pp.syncing = false

	pp.parametersContainer.Refresh()
}

func (pp *ParameterPanel) addSlider(def models.ParameterDefinition, value int) {
	slider := widget.NewSlider(float64(def.Range.Min), float64(def.Range.Max))
	slider.Step = 1
	slider.SetValue(float64(value))

	valueLabel := widget.NewLabel(formatValue(def, value))
	name := def.Name
	slider.OnChanged = func(v float64) {
		if pp.syncing || pp.onParameterChange == nil {
			return
		}
		pp.onParameterChange(name, int(v))
	}

	pp.sliders[name] = slider
	pp.labels[name] = valueLabel
	pp.definitions[name] = def

	row := container.NewBorder(nil, nil, widget.NewLabel(def.Label), valueLabel, slider)
	pp.parametersContainer.Add(row)
}

// ShowValue moves a slider to the stored value without firing the handler.
func (pp *ParameterPanel) ShowValue(name string, value int) {
	slider, ok := pp.sliders[name]
	if !ok {
		return
	}
	pp.syncing = true
	slider.SetValue(float64(value))
	pp.syncing = false
	pp.labels[name].SetText(formatValue(pp.definitions[name], value))
}

func formatValue(def models.ParameterDefinition, value int) string {
	if def.Kind == models.KindPercent {
		return fmt.Sprintf("%.2f", float64(value)/100)
	}
	return strconv.Itoa(value)
}
