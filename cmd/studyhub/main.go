package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/studyhub/internal/blob"
	"github.com/csheth/studyhub/internal/chat"
	"github.com/csheth/studyhub/internal/config"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/llm"
	"github.com/csheth/studyhub/internal/store"
	"github.com/csheth/studyhub/internal/tui"
	"github.com/csheth/studyhub/internal/viewer"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger, closeLog, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	backend, err := store.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return err
	}
	st := store.New(backend, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.WithError(err).Warn("closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirror := store.NewMirror(st, logger)
	refs := blob.NewRegistry()
	catalog := library.NewCatalog(library.Options{
		Mirror: mirror,
		Refs:   refs,
		Logger: logger,
	})
	catalog.Initialize(ctx, st)

	llmClient, err := llm.NewFromEnv(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		Endpoint: cfg.LLMEndpoint,
	})
	if err != nil {
		fmt.Println("LLM disabled:", err)
		logger.WithError(err).Warn("study assistant disabled")
		llmClient = nil
	}
	if closer, ok := llmClient.(io.Closer); ok {
		defer closer.Close()
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Catalog: catalog,
			Chat:    chat.NewSession(logger),
			Refs:    refs,
			Viewer:  viewer.New(refs, logger),
			Inspect: viewer.Inspect,
			LLM:     llmClient,
			Logger:  logger,
		}),
		opts...,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return mirror.Run(groupCtx)
	})
	group.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})
	return group.Wait()
}
