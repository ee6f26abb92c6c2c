package notify

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// Notifier reports events to the user. Info is a transient, non-blocking
// toast; Error blocks further action behind a modal dialog.
type Notifier interface {
	Info(title, message string)
	Error(title string, err error)
}

// toastFunc matches beeep.Notify
type toastFunc func(title, message string) error

// Desktop shows toasts through the OS notification service and errors as
// Fyne dialogs on the main window
type Desktop struct {
	app    fyne.App
	window fyne.Window
	toast  toastFunc
	log    zerolog.Logger
}

// NewDesktop creates a notifier bound to window
func NewDesktop(app fyne.App, window fyne.Window, log zerolog.Logger) *Desktop {
	return &Desktop{
		app:    app,
		window: window,
		toast: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		log: log.With().Str("component", "notify").Logger(),
	}
}

// Info sends a toast, falling back to Fyne's notification API
func (d *Desktop) Info(title, message string) {
	d.log.Info().Str("title", title).Msg(message)

	if d.toast != nil {
		err := d.toast(title, message)
		if err == nil {
			return
		}
		d.log.Debug().Err(err).Msg("desktop toast failed, using fyne notification")
	}
	if d.app != nil {
		d.app.SendNotification(fyne.NewNotification(title, message))
	}
}

// Error shows a modal error dialog
func (d *Desktop) Error(title string, err error) {
	d.log.Error().Err(err).Str("title", title).Msg("user-facing error")

	if d.window == nil {
		return
	}
	dlg := dialog.NewError(err, d.window)
	dlg.Show()
}
