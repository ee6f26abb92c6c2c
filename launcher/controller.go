package launcher

import (
	"alistlauncher/health"
	"alistlauncher/models"
	"alistlauncher/notify"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// State is the launch-flow state
type State int

const (
	StateIdle State = iota
	StatePrompting
	StateSaving
	StateLaunching
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrompting:
		return "prompting"
	case StateSaving:
		return "saving"
	case StateLaunching:
		return "launching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrNoConfig is returned by Restart when nothing has been configured
var ErrNoConfig = errors.New("no program configured")

// ConfigStore persists the launcher record
type ConfigStore interface {
	Load() (*models.Config, error)
	SaveConfig(path string, port int) (*models.Config, error)
	Remove() error
}

// Picker asks the user for the server executable. done receives an empty
// path when the user cancels.
type Picker interface {
	PickExecutable(done func(path string, err error))
}

// Clipboard receives copied addresses
type Clipboard interface {
	SetContent(content string)
}

// StatusChecker probes the running service
type StatusChecker interface {
	Check(ctx context.Context, host string, port int) (*health.Status, error)
}

// Deps bundles the collaborators of a Controller
type Deps struct {
	Store     ConfigStore
	Super     *Supervisor
	Picker    Picker
	Notifier  notify.Notifier
	Clipboard Clipboard
	Checker   StatusChecker
	Log       zerolog.Logger
}

// Controller owns the application state: the current port, the flow state
// and, through the supervisor, the single process handle. All methods are
// meant to be called from the UI goroutine.
type Controller struct {
	store     ConfigStore
	super     *Supervisor
	picker    Picker
	notifier  notify.Notifier
	clipboard Clipboard
	checker   StatusChecker
	log       zerolog.Logger

	port      int
	state     State
	retryUsed bool
	shutdown  bool

	// OnChange is called after every state or port change
	OnChange func()
}

// NewController creates a controller in the idle state with the default port
func NewController(d Deps) *Controller {
	return &Controller{
		store:     d.Store,
		super:     d.Super,
		picker:    d.Picker,
		notifier:  d.Notifier,
		clipboard: d.Clipboard,
		checker:   d.Checker,
		log:       d.Log.With().Str("component", "controller").Logger(),
		port:      models.DefaultPort,
		state:     StateIdle,
	}
}

// Port returns the in-memory port
func (c *Controller) Port() int {
	return c.port
}

// State returns the current flow state
func (c *Controller) State() State {
	return c.state
}

// Running returns the supervised process, or nil
func (c *Controller) Running() *RunInfo {
	return c.super.Running()
}

// Startup loads the saved config and launches it, or prompts for a program
// on first run. A cancelled prompt leaves the controller idle.
func (c *Controller) Startup() {
	cfg := c.loadConfig()
	if cfg != nil {
		c.setPort(cfg.Port)
		c.retryUsed = false
		c.launch(cfg)
		return
	}

	c.retryUsed = false
	c.promptAndLaunch(c.port)
}

// SaveSettings validates portText, asks for the program and then saves and
// restarts. An invalid port is rejected before any prompt or write.
func (c *Controller) SaveSettings(portText string) {
	port, err := models.ParsePort(portText)
	if err != nil {
		c.notifier.Error("Invalid port", err)
		return
	}

	c.pick(func(path string) {
		c.setState(StateSaving)
		if _, err := c.store.SaveConfig(path, port); err != nil {
			c.notifier.Error("Config error", fmt.Errorf("failed to save config: %w", err))
			c.setState(StateIdle)
			return
		}
		c.setPort(port)
		c.notifier.Info("Settings saved", "The new settings have been saved")
		c.retryUsed = false
		c.Restart()
	})
}

// ChangeProgram re-picks the executable and restarts with the port in
// portText, or the current port when portText is not a valid port
func (c *Controller) ChangeProgram(portText string) {
	port, err := models.ParsePort(portText)
	if err != nil {
		port = c.port
	}

	c.pick(func(path string) {
		c.setState(StateSaving)
		if _, err := c.store.SaveConfig(path, port); err != nil {
			c.notifier.Error("Config error", fmt.Errorf("failed to save config: %w", err))
			c.setState(StateIdle)
			return
		}
		c.setPort(port)
		c.retryUsed = false
		c.Restart()
	})
}

// RestartService is the user-requested restart: it grants a fresh automatic
// re-prompt before restarting
func (c *Controller) RestartService() error {
	c.retryUsed = false
	return c.Restart()
}

// Restart reloads the config and starts it. Without a config it is a no-op.
func (c *Controller) Restart() error {
	cfg := c.loadConfig()
	if cfg == nil {
		c.log.Debug().Msg("restart requested without config")
		if c.state == StateSaving || c.state == StateLaunching {
			c.setState(StateIdle)
		}
		return ErrNoConfig
	}
	c.launch(cfg)
	return nil
}

// Reset deletes the config and restores the default port. A running
// service is left alone and keeps its state.
func (c *Controller) Reset() {
	if err := c.store.Remove(); err != nil {
		c.notifier.Error("Config error", fmt.Errorf("failed to delete config: %w", err))
		return
	}
	c.setPort(models.DefaultPort)
	c.retryUsed = false
	if c.super.Running() == nil {
		c.setState(StateIdle)
	}
	c.notifier.Info("Config reset", "Default settings restored")
}

// CopyAddress puts ip formatted with the current port on the clipboard
func (c *Controller) CopyAddress(ip string) (string, bool) {
	if ip == "" || c.clipboard == nil {
		c.notifier.Info("Copy failed", "No address to copy")
		return "", false
	}
	address := models.FormatAddress(ip, c.port)
	c.clipboard.SetContent(address)
	c.notifier.Info("Copied", address+" copied to clipboard")
	return address, true
}

// CheckService asks the local service for its landing page
func (c *Controller) CheckService(ctx context.Context) (*health.Status, error) {
	if c.checker == nil {
		return nil, errors.New("no status checker configured")
	}
	status, err := c.checker.Check(ctx, "127.0.0.1", c.port)
	if err != nil {
		c.notifier.Error("Service unreachable", err)
		return nil, err
	}
	c.notifier.Info("Service reachable", status.Summary())
	return status, nil
}

// Shutdown terminates the held process. Safe to call more than once.
func (c *Controller) Shutdown() {
	if c.shutdown {
		return
	}
	c.shutdown = true
	if err := c.super.Stop(); err != nil {
		c.log.Warn().Err(err).Msg("stop on shutdown failed")
	}
}

func (c *Controller) loadConfig() *models.Config {
	cfg, err := c.store.Load()
	if err != nil {
		c.notifier.Error("Config error", fmt.Errorf("failed to read config: %w", err))
		return nil
	}
	return cfg
}

// launch starts cfg. A failed spawn drops the config and, once per cycle,
// goes back to prompting; after that it stays Failed until the user acts.
func (c *Controller) launch(cfg *models.Config) {
	c.setPort(cfg.Port)
	c.setState(StateLaunching)

	if _, err := c.super.Start(cfg.Path, cfg.Port); err != nil {
		c.notifier.Error("Launch failed", err)
		if rmErr := c.store.Remove(); rmErr != nil {
			c.log.Error().Err(rmErr).Msg("failed to delete config after launch failure")
		}

		if c.retryUsed {
			c.setState(StateFailed)
			return
		}
		c.retryUsed = true
		c.promptAndLaunch(cfg.Port)
		return
	}

	c.retryUsed = false
	c.setState(StateReady)
	c.notifier.Info("Service started", "AList is running")
}

func (c *Controller) promptAndLaunch(port int) {
	failedBefore := c.retryUsed
	c.pickWithCancel(func(path string) {
		c.setState(StateSaving)
		cfg, err := c.store.SaveConfig(path, port)
		if err != nil {
			c.notifier.Error("Config error", fmt.Errorf("failed to save config: %w", err))
			c.setState(StateFailed)
			return
		}
		c.setPort(cfg.Port)
		c.launch(cfg)
	}, func() {
		if failedBefore {
			c.setState(StateFailed)
			return
		}
		c.setState(StateIdle)
	})
}

func (c *Controller) pick(onPicked func(path string)) {
	prev := c.state
	c.pickWithCancel(onPicked, func() { c.setState(prev) })
}

func (c *Controller) pickWithCancel(onPicked func(path string), onCancel func()) {
	c.setState(StatePrompting)
	c.picker.PickExecutable(func(path string, err error) {
		if err != nil {
			c.notifier.Error("File selection failed", err)
			onCancel()
			return
		}
		if path == "" {
			c.log.Debug().Msg("file selection cancelled")
			onCancel()
			return
		}
		onPicked(path)
	})
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug().Stringer("from", c.state).Stringer("to", s).Msg("state change")
	c.state = s
	c.changed()
}

func (c *Controller) setPort(port int) {
	if c.port == port {
		return
	}
	c.port = port
	c.changed()
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}
