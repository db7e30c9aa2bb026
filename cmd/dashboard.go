package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/Ashfaaq98/caseportal/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	minTUICols = 80
	minTUIRows = 24
	tuiLogFile = "caseportal.log"
)

var forceTUI bool

// dashboardCmd runs the interactive client.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive case dashboard",
	Long: `Open the terminal dashboard. Sign in with your case number and access code to
see progress, the case timeline, documents and your next court date.

Logs are written to logs/caseportal.log while the dashboard is open.

Keys:
  Ctrl-L  log out
  Ctrl-R  reload case data
  Ctrl-T  toggle light/dark theme
  Ctrl-C  quit`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Start even when stdout does not look like a usable terminal")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !forceTUI {
		if err := checkTerminal(); err != nil {
			return err
		}
	}

	// The TUI owns the terminal; everything else goes to the log file.
	logFile, err := logging.OpenFile(filepath.Join(getWorkingDir(), "logs"), tuiLogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.SetOutput(logFile)
	defer logger.SetOutput(os.Stderr)

	cfg := GetConfig()
	logger.WithField("config", cfg.String()).Info("starting dashboard")

	svc, err := openServices(cfg, "client")
	if err != nil {
		return err
	}
	defer svc.Close()

	var hint string
	if cfg.Session.DefaultCaseNumber != "" {
		hint = fmt.Sprintf("Demo credentials: Case %s / Code test123", cfg.Session.DefaultCaseNumber)
	}

	app := ui.NewUI(cmd.Context(), svc.controller, ui.Options{
		Builder:  svc.builder(),
		Theme:    cfg.UI.Theme,
		DemoHint: hint,
		Logger:   componentLogger("ui"),
	})
	if err := app.Start(cmd.Context()); err != nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}

// checkTerminal refuses to start the TUI where it cannot draw.
func checkTerminal() error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("stdout is not a terminal; use 'caseportal status' for non-interactive output or pass --force-tui")
	}
	if strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return fmt.Errorf("TERM=dumb cannot render the dashboard; pass --force-tui to try anyway")
	}
	cols, rows := terminalSize()
	if cols > 0 && rows > 0 && (cols < minTUICols || rows < minTUIRows) {
		return fmt.Errorf("terminal is %dx%d; the dashboard needs at least %dx%d", cols, rows, minTUICols, minTUIRows)
	}
	return nil
}

// sizeFromEnv reads COLUMNS and LINES when both are set.
func sizeFromEnv() (cols, rows int, ok bool) {
	c, errC := strconv.Atoi(os.Getenv("COLUMNS"))
	r, errR := strconv.Atoi(os.Getenv("LINES"))
	if errC != nil || errR != nil || c <= 0 || r <= 0 {
		return 0, 0, false
	}
	return c, r, true
}
