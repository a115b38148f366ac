package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/mirror"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config docmirror.Config
	Logger *slog.Logger

	Syncer   *mirror.Syncer
	Verifier *mirror.Verifier
	Migrator *mirror.Migrator
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Dir     string `help:"Docs directory (overrides configuration)" type:"path"`
	Config  string `short:"c" help:"YAML configuration file" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Sync    SyncCmd    `cmd:"" default:"1" help:"Mirror documentation pages and the changelog"`
	Verify  VerifyCmd  `cmd:"" help:"Audit the mirror against its manifest"`
	Migrate MigrateCmd `cmd:"" help:"Rename mirrored files to the canonical naming scheme"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	Quiet bool `short:"q" help:"Suppress per-page progress output"`
}

// VerifyCmd is the "verify" subcommand.
type VerifyCmd struct{}

// MigrateCmd is the "migrate" subcommand.
type MigrateCmd struct {
	Force bool `help:"Apply the renames instead of printing the plan"`
}
