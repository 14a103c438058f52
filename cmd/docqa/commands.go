package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/server"
	"docqa/internal/tui"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd, os.Stderr)
	if err != nil {
		return err
	}
	addr := app.cfg.Server.Addr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}
	srv := server.New(server.Config{
		Addr:        addr,
		UploadDir:   app.cfg.Server.UploadDir,
		MaxUploadMB: app.cfg.Server.MaxUploadMB,
	}, app.service, app.logger)
	return srv.Run(ctx)
}

func chatAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: docqa chat FILE")
	}

	var logOut io.Writer = io.Discard
	if lf := cmd.String("log-file"); lf != "" {
		f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	app, err := newAppContext(cmd, logOut)
	if err != nil {
		return err
	}
	text, err := extract.FromFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	up, err := app.service.Ingest(text)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	m := tui.New(ctx, app.service, filepath.Base(path), up.Segments, up.Summary)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func askAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return errors.New("usage: docqa ask FILE QUESTION")
	}
	path := cmd.Args().Get(0)
	question := strings.Join(cmd.Args().Slice()[1:], " ")

	app, err := newAppContext(cmd, os.Stderr)
	if err != nil {
		return err
	}
	text, err := extract.FromFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	up, err := app.service.Ingest(text)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	reply := app.service.Respond(ctx, question, nil, up.Segments)
	fmt.Println(reply.Text)
	if cmd.Bool("show-source") && reply.Selection.Found() {
		fmt.Printf("\n--- segment %d/%d (score %.3f) ---\n%s\n",
			reply.Selection.Index+1, len(up.Segments), reply.Selection.Score, reply.Selection.Segment)
	}
	return nil
}

func segmentAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: docqa segment FILE")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	seg, err := newSegmenter(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	maxTokens := cfg.Segmenter.MaxTokens
	if n := cmd.Int("max-tokens"); n > 0 {
		maxTokens = n
	}

	text, err := extract.FromFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	segments, err := seg.Segment(text, maxTokens)
	if err != nil {
		return err
	}

	fmt.Printf("%d segments (max %d tokens)\n", len(segments), maxTokens)
	for i, s := range segments {
		fmt.Printf("[%d] %d tokens\n", i, seg.CountTokens(s))
		if cmd.Bool("text") {
			fmt.Println(s)
			fmt.Println()
		}
	}
	return nil
}

func configInitAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		p, err := config.DefaultUserConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Println("wrote", path)
	return nil
}
