package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/veContacts/internal/audit"
	"rhystmorgan/veContacts/internal/config"
	"rhystmorgan/veContacts/internal/contacttable"
	"rhystmorgan/veContacts/internal/storage"
	"rhystmorgan/veContacts/internal/validation"
	"rhystmorgan/veContacts/internal/views"
	"rhystmorgan/veContacts/internal/wallet"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("VETERM_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)
	logger.Info("starting veterm contacts", "data_dir", cfg.DataDir, "backend", cfg.StoreBackend, "network", cfg.Network)

	store, jsonStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	keyring, err := openKeyring(cfg, logger)
	if err != nil {
		return err
	}

	// Leave the interfaces nil when there is no wallet.
	var keys contacttable.KeyGenerator
	var lock views.WalletLock
	if keyring != nil {
		keys = keyring
		lock = keyring
	}

	contacts := contacttable.New(store, validation.NewAddressValidator(false), keys, contacttable.WithLogger(logger))
	if err := contacts.RefreshContactTable(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if jsonStore != nil && cfg.WatchStore {
		go func() {
			if err := jsonStore.Watch(ctx); err != nil {
				logger.Error("contacts watcher stopped", "error", err)
			}
		}()
	}

	if cfg.AuditDir != "" {
		auditor, err := audit.NewContactAuditor(cfg.AuditDir, logger)
		if err != nil {
			return err
		}
		auditor.Seed(contacts.Entries())
		auditSub := store.Subscribe()
		auditDone := make(chan struct{})
		go func() {
			defer close(auditDone)
			if err := auditor.Watch(ctx, auditSub); err != nil {
				logger.Error("audit log stopped", "error", err)
			}
		}()

		// Closing the store hands every queued event to Watch, which then flushes
		// and returns. Only after that is the audit log closed.
		defer func() {
			store.Close()
			<-auditDone
			if err := auditor.Close(); err != nil {
				logger.Error("failed to close audit log", "error", err)
			}
		}()
	}

	contactsView := views.NewContactsModel(contacts, store.Subscribe(), lock, logger)
	defer contactsView.Close()
	if keyring != nil {
		keyring.SetPasswordPrompt(contactsView.PendingPassword)
	}

	app := views.NewAppModel(contactsView, cfg.Network)
	if keyring != nil {
		session := wallet.NewSession(keyring, wallet.SessionConfig{InactivityLimit: cfg.LockTimeout})
		app.SetSession(session)
		go session.Run(ctx)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}

	logger.Info("veterm contacts stopped")
	return nil
}

// openStore returns the configured store, plus the JSON store itself when that
// backend is used so it can be watched.
func openStore(cfg *config.Config, logger *slog.Logger) (storage.ContactStore, *storage.JSONStore, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := storage.OpenSQLiteStore(cfg.ContactsPath(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open contact database: %w", err)
		}
		return store, nil, nil

	default:
		store, err := storage.OpenJSONStore(cfg.ContactsPath(), storage.JSONOptions{
			Password: cfg.ContactsPassword,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open contacts file: %w", err)
		}
		return store, store, nil
	}
}

// openKeyring loads the wallet keyring. Without one, contacts still work but no
// receiving addresses can be generated; a configured wallet password creates one.
func openKeyring(cfg *config.Config, logger *slog.Logger) (*wallet.Keyring, error) {
	keyring, err := wallet.OpenKeyring(cfg.KeyringPath(), logger)
	switch {
	case errors.Is(err, wallet.ErrNoKeyring):
		if cfg.WalletPassword == "" {
			logger.Warn("no wallet keyring; address generation disabled", "path", cfg.KeyringPath())
			return nil, nil
		}

		keyring, mnemonic, err := wallet.CreateKeyring(cfg.KeyringPath(), cfg.WalletPassword, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
		fmt.Println("A new wallet was created. Write down your recovery phrase:")
		fmt.Println()
		fmt.Println("  " + mnemonic)
		fmt.Println()
		fmt.Print("Press Enter to continue...")
		bufio.NewReader(os.Stdin).ReadString('\n')
		return keyring, nil

	case err != nil:
		return nil, fmt.Errorf("failed to open wallet: %w", err)
	}

	if cfg.WalletPassword != "" {
		if err := keyring.Unlock(cfg.WalletPassword); err != nil {
			logger.Warn("configured wallet password did not unlock the keyring", "error", err)
		}
	}
	return keyring, nil
}
