// procur-tui - A terminal interface for the procur B2B procurement assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/procur-tui/internal/api"
	"github.com/jeranaias/procur-tui/internal/config"
	"github.com/jeranaias/procur-tui/internal/notify"
	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/storage"
	"github.com/jeranaias/procur-tui/internal/ui/chat"
	"github.com/jeranaias/procur-tui/internal/ui/supplier"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath   = flag.String("config", "", "config file path (default ~/.procur/config.toml)")
		supplierMode = flag.Bool("supplier", false, "run the supplier portal instead of the buyer chat")
		resumeThread = flag.String("resume", "", "resume a cached conversation: thread id or 'last'")
		listConvs    = flag.Bool("list", false, "list cached conversations and exit")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("procur-tui %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "procur-tui: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	logger, closeLog := openLogger(cfg)
	defer closeLog()

	store, err := openStore(cfg)
	if err != nil {
		logger.Printf("storage disabled: %v", err)
		store = nil
	}

	if *listConvs {
		listConversations(store)
		return
	}

	if *supplierMode {
		runSupplier(cfg, logger)
		return
	}

	runBuyer(cfg, store, logger, *resumeThread, *configPath)
}

// =============================================================================
// BUYER CHAT
// =============================================================================

func runBuyer(cfg *config.Config, store *storage.ConversationStore, logger *log.Logger, resumeThread, configPath string) {
	ctrl := session.NewController(session.Options{
		BaseURL:        cfg.API.BaseURL,
		Token:          cfg.API.Token,
		RecipientEmail: cfg.Buyer.RecipientEmail,
		Channel:        cfg.Buyer.Channel,
		Logger:         logger,
	})

	if resumeThread != "" && store != nil {
		if err := hydrate(ctrl, store, resumeThread); err != nil {
			fmt.Fprintf(os.Stderr, "procur-tui: cannot resume %q: %v\n", resumeThread, err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(
		chat.New(ctrl, store, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startNotifications(ctx, cfg, logger, p)
	startConfigWatcher(ctx, configPath, logger, p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "procur-tui: %v\n", err)
		os.Exit(1)
	}
	ctrl.Cancel()
}

// hydrate restores a cached conversation into the controller before the
// program starts.
func hydrate(ctrl *session.Controller, store *storage.ConversationStore, thread string) error {
	var (
		conv *storage.StoredConversation
		err  error
	)
	if thread == "last" {
		conv, err = store.LoadMostRecent()
	} else {
		conv, err = store.Load(thread)
	}
	if err != nil {
		return err
	}
	return ctrl.Hydrate(conv.ThreadID, conv.Messages, conv.Paused)
}

// startNotifications runs the websocket listener and forwards its events
// into the program. No-op when push is not configured.
func startNotifications(ctx context.Context, cfg *config.Config, logger *log.Logger, p *tea.Program) {
	if cfg.API.WSURL == "" {
		return
	}
	listener := notify.NewListener(cfg.API.WSURL, cfg.API.Token, logger)
	go listener.Run(ctx)
	go func() {
		for ev := range listener.Events() {
			p.Send(chat.NotificationMsg{Event: ev})
		}
	}()
}

// startConfigWatcher hot-reloads the config file into the running program.
func startConfigWatcher(ctx context.Context, configPath string, logger *log.Logger, p *tea.Program) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return
		}
	}

	watcher, err := config.NewWatcher(path)
	if err != nil {
		logger.Printf("config watcher disabled: %v", err)
		return
	}
	go watcher.Run(ctx)
	go func() {
		for cfg := range watcher.Reloads() {
			config.SetGlobal(cfg)
			p.Send(chat.ConfigReloadedMsg{Config: cfg})
		}
	}()
}

// =============================================================================
// SUPPLIER PORTAL
// =============================================================================

func runSupplier(cfg *config.Config, logger *log.Logger) {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Token).WithLogger(logger)

	p := tea.NewProgram(
		supplier.New(client, cfg.UI.Theme),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "procur-tui: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SETUP HELPERS
// =============================================================================

func loadConfig(path string) (*config.Config, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// openLogger opens the diagnostics log file. Logging failures never block
// startup; the logger falls back to discard.
func openLogger(cfg *config.Config) (*log.Logger, func()) {
	if !cfg.Log.Enabled {
		return log.New(io.Discard, "", 0), func() {}
	}

	path := cfg.Log.Path
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return log.New(io.Discard, "", 0), func() {}
		}
		path = dir + string(os.PathSeparator) + "procur.log"
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }
}

func openStore(cfg *config.Config) (*storage.ConversationStore, error) {
	var (
		store *storage.ConversationStore
		err   error
	)
	if cfg.Storage.Dir != "" {
		store, err = storage.NewConversationStoreWithDir(cfg.Storage.Dir)
	} else {
		store, err = storage.NewConversationStore()
	}
	if err != nil {
		return nil, err
	}
	store.MaxConversations = cfg.Storage.MaxConversations
	return store, nil
}

// listConversations prints the cached conversation index to stdout.
func listConversations(store *storage.ConversationStore) {
	if store == nil {
		fmt.Println("no conversation cache available")
		return
	}
	metas, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "procur-tui: %v\n", err)
		os.Exit(1)
	}
	if len(metas) == 0 {
		fmt.Println("no cached conversations")
		return
	}
	for _, meta := range metas {
		paused := ""
		if meta.Paused {
			paused = "  [paused]"
		}
		fmt.Printf("%s  %-12s %3d msgs  %s%s\n",
			meta.UpdatedAt.Format("2006-01-02 15:04"),
			meta.WorkflowType,
			meta.MessageCount,
			meta.Summary,
			paused,
		)
	}
}
