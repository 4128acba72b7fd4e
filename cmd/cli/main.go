package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/sessionkit/cmd/cli/internal/commands"
	"github.com/wolfeidau/sessionkit/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login   commands.LoginCmd  `cmd:"" help:"Sign in and establish a session"`
		Whoami  commands.WhoamiCmd `cmd:"" help:"Show the current session"`
		Orgs    commands.OrgsCmd   `cmd:"" help:"Manage the active organization"`
		Logout  commands.LogoutCmd `cmd:"" help:"Sign out and clear the session"`
		Debug   bool               `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	log.Logger = logger.Setup(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
