package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retailjet/glance/pkg/auth"
)

type tokenCmd struct {
	User   string        `default:"demo" help:"Subject of the token."`
	Store  string        `default:"retailjet" help:"Store the viewer belongs to."`
	Role   []string      `default:"owner" help:"Viewer roles."`
	Locale string        `default:"en" help:"Viewer locale."`
	TTL    time.Duration `default:"1h" help:"Token lifetime."`

	out io.Writer
}

func (cmd *tokenCmd) Run(_ context.Context, g *Globals) error {
	cfg, _, err := loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return errors.New("token: auth.secret is not configured")
	}
	validator, err := auth.NewValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	token, err := validator.Issue(auth.Viewer{
		UserID:  cmd.User,
		StoreID: cmd.Store,
		Roles:   cmd.Role,
		Locale:  cmd.Locale,
	}, cmd.TTL)
	if err != nil {
		return err
	}
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
