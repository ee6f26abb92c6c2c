package ui

import (
	"alistlauncher/health"
	"alistlauncher/launcher"
	"alistlauncher/models"
	"alistlauncher/network"
	"alistlauncher/notify"
	"alistlauncher/storage"
	"context"
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const (
	AppID    = "com.alist.launcher"
	AppTitle = "AList Launcher"

	notDetected = "not detected"
)

// MainWindow represents the main application window
type MainWindow struct {
	app    fyne.App
	window fyne.Window
	ctrl   *launcher.Controller
	addrs  network.Addresses
	log    zerolog.Logger

	portEntry   *widget.Entry
	badge       *StateBadge
	runLabel    *widget.Label
	ipv4Label   *widget.Label
	ipv6Label   *widget.Label
	ipv4Copy    *widget.Button
	ipv6Copy    *widget.Button
	checkButton *widget.Button
	chooseBtn   *widget.Button

	// shownPort is the controller port last written into portEntry
	shownPort int
}

// NewMainWindow creates the window and its controller
func NewMainWindow(log zerolog.Logger) *MainWindow {
	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.StorageIcon())
	return newMainWindow(myApp, windowDeps{
		store:   storage.NewManager(log),
		spawner: launcher.NewExecSpawner(log),
		addrs:   network.DetectIPs(),
	}, log)
}

// windowDeps are the collaborators swapped out in tests; a nil notifier or
// picker selects the desktop implementation
type windowDeps struct {
	store    launcher.ConfigStore
	spawner  launcher.Spawner
	addrs    network.Addresses
	notifier notify.Notifier
	picker   launcher.Picker
}

func newMainWindow(a fyne.App, deps windowDeps, log zerolog.Logger) *MainWindow {
	window := a.NewWindow(AppTitle)
	window.Resize(fyne.NewSize(680, 480))

	mw := &MainWindow{
		app:    a,
		window: window,
		addrs:  deps.addrs,
		log:    log.With().Str("component", "ui").Logger(),
	}

	if deps.notifier == nil {
		deps.notifier = notify.NewDesktop(a, window, log)
	}
	if deps.picker == nil {
		deps.picker = NewFilePicker(a, window, log)
	}

	mw.ctrl = launcher.NewController(launcher.Deps{
		Store:     deps.store,
		Super:     launcher.NewSupervisor(deps.spawner, log),
		Picker:    deps.picker,
		Notifier:  deps.notifier,
		Clipboard: window.Clipboard(),
		Checker:   health.NewChecker(),
		Log:       log,
	})
	mw.ctrl.OnChange = mw.refresh

	mw.setupUI()
	mw.setupTray()
	window.SetCloseIntercept(mw.quit)

	return mw
}

// Controller exposes the launch controller
func (mw *MainWindow) Controller() *launcher.Controller {
	return mw.ctrl
}

// ShowAndRun shows the window, runs the startup flow once the event loop is
// up and blocks until exit
func (mw *MainWindow) ShowAndRun() {
	mw.app.Lifecycle().SetOnStarted(func() {
		mw.ctrl.Startup()
		mw.refresh()
	})
	mw.window.ShowAndRun()
	mw.ctrl.Shutdown()
}

// setupUI sets up the user interface
func (mw *MainWindow) setupUI() {
	mw.portEntry = widget.NewEntry()
	mw.showPort(mw.ctrl.Port())
	mw.portEntry.Validator = func(s string) error {
		_, err := models.ParsePort(s)
		return err
	}
	saveBtn := widget.NewButtonWithIcon("Save settings", theme.DocumentSaveIcon(), func() {
		mw.ctrl.SaveSettings(mw.portEntry.Text)
	})
	portRow := container.NewBorder(nil, nil, widget.NewLabel("Service port:"), saveBtn,
		container.NewGridWrap(fyne.NewSize(100, mw.portEntry.MinSize().Height), mw.portEntry))

	mw.ipv4Label = widget.NewLabel("")
	mw.ipv4Label.TextStyle = fyne.TextStyle{Monospace: true}
	mw.ipv6Label = widget.NewLabel("")
	mw.ipv6Label.TextStyle = fyne.TextStyle{Monospace: true}
	mw.ipv4Copy = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
		mw.ctrl.CopyAddress(mw.addrs.IPv4)
	})
	mw.ipv6Copy = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
		mw.ctrl.CopyAddress(mw.addrs.IPv6)
	})

	addressCard := widget.NewCard("Access addresses", "", container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("IPv4:"), mw.ipv4Copy, mw.ipv4Label),
		container.NewBorder(nil, nil, widget.NewLabel("IPv6:"), mw.ipv6Copy, mw.ipv6Label),
	))

	mw.badge = NewStateBadge(mw.ctrl.State())
	mw.runLabel = widget.NewLabel("")
	statusRow := container.NewHBox(widget.NewLabel("Status:"), mw.badge, mw.runLabel)

	mw.checkButton = widget.NewButtonWithIcon("Check service", theme.SearchIcon(), mw.checkService)
	mw.chooseBtn = widget.NewButtonWithIcon("Choose program", theme.FolderOpenIcon(), func() {
		mw.ctrl.ChangeProgram(mw.portEntry.Text)
	})
	actions := container.NewHBox(
		widget.NewButtonWithIcon("Restart", theme.ViewRefreshIcon(), mw.restart),
		mw.chooseBtn,
		widget.NewButtonWithIcon("Reset config", theme.SettingsIcon(), mw.resetConfig),
		mw.checkButton,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("Quit", theme.CancelIcon(), mw.quit),
	)

	content := container.NewVBox(portRow, addressCard, statusRow, layout.NewSpacer(), actions)
	mw.window.SetContent(container.NewPadded(content))
	mw.refresh()
}

// setupTray adds a system tray menu on desktop drivers
func (mw *MainWindow) setupTray() {
	desk, ok := mw.app.(desktop.App)
	if !ok {
		return
	}
	menu := fyne.NewMenu(AppTitle,
		fyne.NewMenuItem("Show", mw.window.Show),
		fyne.NewMenuItem("Restart service", mw.restart),
	)
	desk.SetSystemTrayMenu(menu)
}

// refresh syncs widgets with the controller state. The port entry is only
// rewritten when the controller port changes so typed text survives.
func (mw *MainWindow) refresh() {
	if mw.badge == nil {
		return
	}
	port := mw.ctrl.Port()
	if port != mw.shownPort {
		mw.showPort(port)
	}
	mw.setAddress(mw.ipv4Label, mw.ipv4Copy, mw.addrs.IPv4, port)
	mw.setAddress(mw.ipv6Label, mw.ipv6Copy, mw.addrs.IPv6, port)

	mw.badge.SetState(mw.ctrl.State())
	if info := mw.ctrl.Running(); info != nil {
		mw.runLabel.SetText(fmt.Sprintf("pid %d, run %s", info.PID, info.ID.String()[:8]))
	} else {
		mw.runLabel.SetText("no process")
	}
}

func (mw *MainWindow) showPort(port int) {
	mw.shownPort = port
	mw.portEntry.SetText(strconv.Itoa(port))
}

func (mw *MainWindow) restart() {
	if err := mw.ctrl.RestartService(); err != nil {
		mw.log.Debug().Err(err).Msg("restart skipped")
	}
}

// resetConfig resets the controller and puts the default port back into the
// entry even if it was already the controller port
func (mw *MainWindow) resetConfig() {
	mw.ctrl.Reset()
	mw.showPort(mw.ctrl.Port())
}

func (mw *MainWindow) setAddress(label *widget.Label, copyBtn *widget.Button, ip string, port int) {
	if ip == "" {
		label.SetText(notDetected)
		copyBtn.Disable()
		return
	}
	label.SetText(models.FormatAddress(ip, port))
	copyBtn.Enable()
}

func (mw *MainWindow) checkService() {
	mw.checkButton.Disable()
	defer mw.checkButton.Enable()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := mw.ctrl.CheckService(ctx); err != nil {
		mw.log.Debug().Err(err).Msg("service check failed")
	}
}

// quit terminates the service and exits
func (mw *MainWindow) quit() {
	mw.ctrl.Shutdown()
	mw.app.Quit()
}
