package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/retailjet/glance/components/glance"
)

var errNoQuestion = errors.New("chat: a question is required")

type chatCmd struct {
	Store    string   `default:"retailjet" help:"Store the answer is about."`
	Question []string `arg:"" optional:"" help:"Question text."`

	out io.Writer
}

func (cmd *chatCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	cfg.Chat.Latency = -1
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return cmd.ask(ctx, a.chat)
}

func (cmd *chatCmd) ask(ctx context.Context, chat *glance.Service) error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	question := strings.TrimSpace(strings.Join(cmd.Question, " "))
	if question == "" {
		fmt.Fprintln(out, "Try one of:")
		for _, action := range glance.SuggestedActions() {
			fmt.Fprintf(out, "  - %s\n", action)
		}
		return errNoQuestion
	}
	resp, err := chat.Complete(ctx, glance.ChatRequest{
		Messages: []glance.Message{glance.NewMessage(glance.RoleUser, question, time.Now())},
		StoreID:  cmd.Store,
		UserID:   "cli",
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] %s\n", glance.FormatClock(resp.Message.CreatedAt.Time), resp.Message.Content)
	return nil
}
