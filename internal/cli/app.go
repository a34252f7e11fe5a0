// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli is the pwtransfer command tree: import, validate, export and
// list against a working vault.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	urfave "github.com/urfave/cli/v2"

	"github.com/MKhiriev/go-pass-transfer/internal/config"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/service"
	"github.com/MKhiriev/go-pass-transfer/internal/store"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// runtime holds what the Before hook sets up for the commands.
type runtime struct {
	build    models.AppBuildInfo
	cfg      *config.StructuredConfig
	log      *logger.Logger
	db       *store.DB
	services *service.Services
}

// NewApp builds the command tree. Configuration, logging and the working
// vault are set up once the global flags are parsed.
func NewApp(build models.AppBuildInfo) *urfave.App {
	rt := &runtime{build: build}

	return &urfave.App{
		Name:    "pwtransfer",
		Usage:   "import and export password vault entries",
		Version: fmt.Sprintf("%s (date %s, commit %s)", build.BuildVersion(), build.BuildDate(), build.BuildCommit()),
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "JSON config file"},
			&urfave.StringFlag{Name: "vault", Usage: "SQLite file of the working vault, or :memory:"},
			&urfave.StringFlag{Name: "delimiter", Usage: "character standing for line breaks in notes"},
			&urfave.StringFlag{Name: "log-file", Usage: "log file path"},
			&urfave.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)"},
		},
		Before: rt.setup,
		After:  rt.teardown,
		Commands: []*urfave.Command{
			importCmd(rt),
			validateCmd(rt),
			exportCmd(rt),
			listCmd(rt),
		},
	}
}

// flagsConfig turns the global flags into the flag layer of the config.
func flagsConfig(c *urfave.Context) *config.StructuredConfig {
	return &config.StructuredConfig{
		Vault:        config.Vault{DSN: c.String("vault")},
		Transfer:     config.Transfer{Delimiter: c.String("delimiter")},
		Log:          config.Log{File: c.String("log-file"), Level: c.String("log-level")},
		JSONFilePath: c.String("config"),
	}
}

func (rt *runtime) setup(c *urfave.Context) error {
	cfg, err := config.GetStructuredConfig(flagsConfig(c))
	if err != nil {
		return urfave.Exit(fmt.Sprintf("error getting configs: %v", err), exitUsage)
	}
	rt.cfg = cfg
	rt.log = logger.NewFileLogger("pwtransfer", cfg.Log.File, cfg.Log.Level)
	c.Context = rt.log.WithContext(c.Context)

	v, err := rt.openVault(c.Context)
	if err != nil {
		rt.log.Err(err).Str("func", "runtime.setup").Str("dsn", cfg.Vault.DSN).Msg("error opening vault")
		return urfave.Exit(fmt.Sprintf("error opening vault %s: %v", cfg.Vault.DSN, err), exitFailure)
	}

	rt.services = service.NewServices(v, *cfg, func() {
		rt.log.Debug().Str("func", "runtime.refresh").Msg("vault view refreshed")
	}, rt.log)
	return nil
}

func (rt *runtime) openVault(ctx context.Context) (vault.Vault, error) {
	if rt.cfg.Vault.DSN == config.MemoryDSN {
		return vault.NewMemory(), nil
	}

	db, err := store.NewConnectSQLite(ctx, rt.cfg.Vault.DSN, rt.log)
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	rt.db = db
	return store.NewEntryRepository(db, rt.log), nil
}

func (rt *runtime) teardown(*urfave.Context) error {
	if rt.db == nil {
		return nil
	}
	return rt.db.Close()
}

// statusError converts a fatal status into a non-zero exit.
func statusError(action string, s models.Status) error {
	if !s.IsFatal() {
		return nil
	}
	return urfave.Exit(fmt.Sprintf("%s: %s", action, s), exitFailure)
}

func whoSaved() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}
