package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/secprep/internal/bank"
	"github.com/verte-zerg/secprep/internal/config"
	"github.com/verte-zerg/secprep/internal/logger"
	"github.com/verte-zerg/secprep/internal/progress"
	"github.com/verte-zerg/secprep/internal/selector"
	"github.com/verte-zerg/secprep/internal/store"
)

// kvStorage is the progress medium plus reset and write-time lookups.
type kvStorage interface {
	progress.Storage
	Delete(ctx context.Context, key string) error
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// app bundles the dependencies every command shares.
type app struct {
	fileCfg  config.FileConfig
	log      *zap.Logger
	uiLog    *zap.Logger
	selector *selector.Selector
	storage  kvStorage
	tracker  *progress.Tracker
	db       *store.Store
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "bank", &bankPath, fileCfg.Bank.Path)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.Path)
	applyBoolConfig(cmd, "no-store", &noStore, fileCfg.Storage.Disabled)

	log, err := logger.New(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	questions, err := bank.Load(bankPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	log.Debug("question bank loaded", zap.String("path", bankPath), zap.Int("questions", len(questions)))

	a := &app{
		fileCfg:  fileCfg,
		log:      log,
		selector: selector.New(questions, selector.DefaultWeights),
		storage:  store.Nop{},
	}
	if !noStore {
		a.openStorage()
	}
	a.tracker = progress.New(a.storage)
	return a, nil
}

// openStorage opens the progress database. When it cannot be opened the
// app keeps running without persistence.
func (a *app) openStorage() {
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		a.log.Warn("progress storage unavailable; progress will not be saved", zap.String("path", path), zap.Error(err))
		return
	}
	a.log.Debug("progress storage opened", zap.String("path", path))
	a.db = st
	a.storage = st
}

func (a *app) quizSize() int {
	if q := a.fileCfg.Quiz.Questions; q != nil && *q > 0 {
		return *q
	}
	return defaultQuestions
}

// uiLogger returns a logger for use while a terminal UI holds the screen.
// Entries go to the log file so they do not draw over the interface.
func (a *app) uiLogger() *zap.Logger {
	if a.uiLog != nil {
		return a.uiLog
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		a.log.Warn("log directory unavailable; UI errors will not be logged", zap.String("path", path), zap.Error(err))
		return zap.NewNop()
	}
	log, err := logger.New(debug, path)
	if err != nil {
		a.log.Warn("log file unavailable; UI errors will not be logged", zap.String("path", path), zap.Error(err))
		return zap.NewNop()
	}
	a.uiLog = log
	return log
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("failed to close db", zap.Error(err))
		}
	}
	if a.uiLog != nil {
		_ = a.uiLog.Sync()
	}
	if err := a.log.Sync(); err != nil {
		// Best-effort flush; stderr sync fails on some terminals.
		_ = err
	}
}
