package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container    *fyne.Container
	statusLabel  *widget.Label
	metricsLabel *widget.Label
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("Ready")
	metricsLabel := widget.NewLabel("contours: -- accepted: --")

	mainContainer := container.NewBorder(
		nil, nil,
		statusLabel,
		metricsLabel,
	)

	return &StatusBar{
		container:    mainContainer,
		statusLabel:  statusLabel,
		metricsLabel: metricsLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) SetMetrics(contours, accepted int) {
	sb.metricsLabel.SetText(fmt.Sprintf("contours: %d accepted: %d", contours, accepted))
}
