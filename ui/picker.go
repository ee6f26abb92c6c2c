package ui

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"
)

const lastDirKey = "last_dir"

// FilePicker selects the server executable with the native dialog when
// zenity is usable and falls back to the Fyne file dialog otherwise
type FilePicker struct {
	app    fyne.App
	window fyne.Window
	native bool
	log    zerolog.Logger
}

// NewFilePicker creates a picker bound to window
func NewFilePicker(app fyne.App, window fyne.Window, log zerolog.Logger) *FilePicker {
	return &FilePicker{
		app:    app,
		window: window,
		native: zenity.IsAvailable(),
		log:    log.With().Str("component", "picker").Logger(),
	}
}

// PickExecutable implements launcher.Picker
func (p *FilePicker) PickExecutable(done func(path string, err error)) {
	startPath := p.lastUsedPath()

	if p.native {
		filename, err := zenity.SelectFile(
			zenity.Title("Select the AList program"),
			zenity.Filename(startPath+string(filepath.Separator)),
			executableFilters(),
		)
		if err == nil {
			p.remember(filename)
			done(filename, nil)
			return
		}
		if errors.Is(err, zenity.ErrCanceled) {
			done("", nil)
			return
		}
		p.log.Warn().Err(err).Msg("native dialog failed, using fyne dialog")
	}

	p.openFyneDialog(startPath, done)
}

func executableFilters() zenity.FileFilters {
	if runtime.GOOS == "windows" {
		return zenity.FileFilters{
			{Name: "Executable files", Patterns: []string{"*.exe"}, CaseFold: true},
			{Name: "All files", Patterns: []string{"*.*"}},
		}
	}
	return zenity.FileFilters{
		{Name: "All files", Patterns: []string{"*"}},
	}
}

func (p *FilePicker) openFyneDialog(startPath string, done func(path string, err error)) {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			done("", err)
			return
		}
		if reader == nil {
			done("", nil)
			return
		}
		defer reader.Close()

		selected := reader.URI().Path()
		p.remember(selected)
		done(selected, nil)
	}, p.window)

	if runtime.GOOS == "windows" {
		fileDialog.SetFilter(fynestorage.NewExtensionFileFilter([]string{".exe"}))
	}
	if startPath != "" {
		if listable, err := fynestorage.ListerForURI(fynestorage.NewFileURI(startPath)); err == nil {
			fileDialog.SetLocation(listable)
		}
	}

	fileDialog.Resize(fyne.NewSize(640, 440))
	fileDialog.Show()
}

// lastUsedPath returns the last used directory or the user's home directory
func (p *FilePicker) lastUsedPath() string {
	if p.app != nil {
		if dir := p.app.Preferences().String(lastDirKey); dir != "" {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return homeDir
}

func (p *FilePicker) remember(path string) {
	if path == "" || p.app == nil {
		return
	}
	p.app.Preferences().SetString(lastDirKey, filepath.Dir(path))
}
