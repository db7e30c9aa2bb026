package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/activity"
	"github.com/Ashfaaq98/caseportal/internal/bus"
	"github.com/Ashfaaq98/caseportal/internal/dashboard"
	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/Ashfaaq98/caseportal/internal/session"
	"github.com/Ashfaaq98/caseportal/internal/store"
	"github.com/sirupsen/logrus"
)

// services bundles what every session-driven command needs.
type services struct {
	cfg        Config
	store      *store.Store
	bus        bus.Bus
	client     *portalapi.Client
	controller *session.Controller
}

// openServices wires the API client, audit store, activity bus and session
// controller. A store that cannot be opened disables auditing rather than
// failing the command.
func openServices(cfg Config, actor string) (*services, error) {
	client, err := portalapi.NewClient(portalapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logging.Component(logger, "portalapi"))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	logger.WithField("base_url", client.BaseURL()).Debug("case API client ready")
	svc := &services{cfg: cfg, client: client}

	var audit activity.AuditLog
	resolved := resolvePathRelativeToBase(getWorkingDir(), cfg.Database.Path)
	st, err := store.NewStore(resolved)
	if err != nil {
		logger.WithError(err).WithField("path", resolved).Warn("audit log unavailable")
	} else {
		svc.store = st
		audit = st
	}

	svc.bus = bus.NewBus(cfg.Redis.URL, logger)
	recorder := activity.NewRecorder(audit, svc.bus, logging.Component(logger, "activity"))

	svc.controller = session.NewController(client, session.Options{
		DefaultCaseNumber: cfg.Session.DefaultCaseNumber,
		Actor:             actor,
		Recorder:          recorder,
		Logger:            logging.Component(logger, "session"),
	})
	return svc, nil
}

func (s *services) builder() dashboard.Builder {
	return dashboard.Builder{
		Contact: dashboard.Contact{
			FirmName: s.cfg.Firm.Name,
			Phone:    s.cfg.Firm.Phone,
			Email:    s.cfg.Firm.Email,
		},
		DefaultCounty: s.cfg.Firm.DefaultCounty,
		DefaultCourt:  s.cfg.Firm.DefaultCourt,
	}
}

// Close releases the bus and the store. A session still open is logged out
// so the audit log records it.
func (s *services) Close() {
	if s.controller != nil && s.controller.State() == session.LoggedIn {
		_ = s.controller.Logout()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			logger.WithError(err).Debug("bus close")
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.WithError(err).Debug("store close")
		}
	}
}

func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

// resolvePathRelativeToBase resolves a possibly relative path against a base directory.
// Absolute paths and ":memory:" are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	p = strings.TrimPrefix(p, "./")
	return filepath.Join(base, p)
}

// componentLogger is a helper for commands that log under their own name.
func componentLogger(name string) *logrus.Entry {
	return logging.Component(logger, name)
}
