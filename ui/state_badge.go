package ui

import (
	"alistlauncher/launcher"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var (
	badgeGrey  = color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	badgeBlue  = color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}
	badgeGreen = color.NRGBA{R: 0x43, G: 0xa0, B: 0x47, A: 0xff}
	badgeRed   = color.NRGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
)

// StateBadge shows the launch-flow state as text on a coloured background
type StateBadge struct {
	widget.BaseWidget
	state  launcher.State
	text   *canvas.Text
	bgRect *canvas.Rectangle
}

// NewStateBadge creates a badge for state
func NewStateBadge(state launcher.State) *StateBadge {
	b := &StateBadge{state: state}
	b.ExtendBaseWidget(b)
	return b
}

// SetState updates the badge
func (b *StateBadge) SetState(state launcher.State) {
	b.state = state
	b.Refresh()
}

// State returns the displayed state
func (b *StateBadge) State() launcher.State {
	return b.state
}

// CreateRenderer implements fyne.Widget
func (b *StateBadge) CreateRenderer() fyne.WidgetRenderer {
	b.text = canvas.NewText(" "+b.state.String()+" ", color.White)
	b.text.TextStyle = fyne.TextStyle{Bold: true}
	b.text.Alignment = fyne.TextAlignCenter
	b.bgRect = canvas.NewRectangle(badgeColor(b.state))
	b.bgRect.CornerRadius = 4

	return &stateBadgeRenderer{
		badge:     b,
		container: container.NewStack(b.bgRect, b.text),
	}
}

func badgeColor(state launcher.State) color.Color {
	switch state {
	case launcher.StateReady:
		return badgeGreen
	case launcher.StateFailed:
		return badgeRed
	case launcher.StatePrompting, launcher.StateSaving, launcher.StateLaunching:
		return badgeBlue
	default:
		return badgeGrey
	}
}

type stateBadgeRenderer struct {
	badge     *StateBadge
	container *fyne.Container
}

func (r *stateBadgeRenderer) MinSize() fyne.Size {
	return r.container.MinSize()
}

func (r *stateBadgeRenderer) Layout(size fyne.Size) {
	r.container.Resize(size)
}

func (r *stateBadgeRenderer) Refresh() {
	r.badge.text.Text = " " + r.badge.state.String() + " "
	r.badge.bgRect.FillColor = badgeColor(r.badge.state)
	r.badge.text.Refresh()
	r.badge.bgRect.Refresh()
}

func (r *stateBadgeRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.container}
}

func (r *stateBadgeRenderer) Destroy() {}
