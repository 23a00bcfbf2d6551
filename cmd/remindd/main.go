package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/store"
	"github.com/sandeepkv93/remindd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = config.FromEnv(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := storage.MigrateUp(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	st := store.New()
	if err := loadStore(ctx, repo, st, cfg.Location()); err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}

	// Persist by full flush on every applied mutation. The data set is one
	// person's reminders, so rewriting it wholesale stays cheap and keeps the
	// store free of partial-write states.
	st.Subscribe(func(store.Event) {
		rows := make([]storage.OccurrenceRow, 0, st.Len())
		for _, occ := range st.Snapshot() {
			rows = append(rows, storage.RowFromOccurrence(occ))
		}
		if err := repo.ReplaceAllOccurrences(ctx, rows); err != nil {
			fmt.Fprintf(os.Stderr, "remindd: persist failed: %v\n", err)
		}
	})

	// Startup maintenance: restore lost per-day slots and purge expired
	// archive entries before the first render.
	now := time.Now()
	if _, err := st.BackfillPerDay(now); err != nil {
		return fmt.Errorf("backfill per-day slots: %w", err)
	}
	st.CleanupExpiredArchived(now)

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()
	scheduleFuture(engine, st.Snapshot(), now)

	var desktop notify.Desktop = notify.NoopDesktop{}
	if cfg.DesktopNotifications {
		desktop = notify.ExecDesktop{}
	}

	m := update.NewModelWithRuntime(st, update.Runtime{
		Engine:         engine,
		Desktop:        desktop,
		DesktopEnabled: cfg.DesktopNotifications,
		WeekStart:      weekStart(ctx, repo, cfg),
		ShowArchived:   loadShowArchived(ctx, repo),
		BannerTTL:      time.Duration(cfg.BannerTTLSeconds) * time.Second,
		OnShowArchivedChange: func(v bool) {
			_ = repo.SetSetting(ctx, storage.SettingShowArchived, fmt.Sprintf("%t", v))
		},
	})
	program := tea.NewProgram(m)

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.MaintenanceCron, func() {
		now := time.Now()
		created, err := st.BackfillPerDay(now)
		if err != nil {
			program.Send(update.AppErrorMsg{Err: err})
			return
		}
		purged := st.CleanupExpiredArchived(now)
		program.Send(update.MaintenanceDoneMsg{Created: created, Purged: purged})
	}); err != nil {
		return fmt.Errorf("schedule maintenance %q: %w", cfg.MaintenanceCron, err)
	}
	jobs.Start()
	defer jobs.Stop()

	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func configPath() string {
	if v := os.Getenv("REMINDD_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "remindd.yaml"
	}
	return filepath.Join(home, ".remindd", "config.yaml")
}

// loadStore hydrates the in-memory store from sqlite, shifting instants into
// the configured timezone so day boundaries match the user's calendar.
func loadStore(ctx context.Context, repo storage.Repository, st *store.Store, loc *time.Location) error {
	rows, err := repo.ListOccurrences(ctx, storage.OccurrenceListFilter{})
	if err != nil {
		return err
	}
	occs := make([]model.Occurrence, 0, len(rows))
	for _, row := range rows {
		occ, err := row.ToOccurrence()
		if err != nil {
			return err
		}
		occ.At = occ.At.In(loc)
		if !occ.Recurrence.End.IsZero() {
			occ.Recurrence.End = occ.Recurrence.End.In(loc)
		}
		occs = append(occs, occ)
	}
	return st.Replace(occs)
}

func scheduleFuture(engine *scheduler.Engine, occs []model.Occurrence, now time.Time) {
	for _, occ := range occs {
		if occ.Completed || occ.Archived || !occ.At.After(now) {
			continue
		}
		_ = engine.Schedule(scheduler.AlarmEvent{
			OccurrenceID: occ.ID,
			Title:        occ.Title,
			FireAt:       occ.At,
		})
	}
}

func loadShowArchived(ctx context.Context, repo storage.Repository) bool {
	v, err := repo.GetSetting(ctx, storage.SettingShowArchived)
	if err != nil {
		return false
	}
	return v == "true"
}

// weekStart prefers the persisted preference, seeding it from config on first
// run so later launches are stable even if the config file changes.
func weekStart(ctx context.Context, repo storage.Repository, cfg *config.Config) time.Weekday {
	v, err := repo.GetSetting(ctx, storage.SettingWeekStart)
	if err != nil {
		_ = repo.SetSetting(ctx, storage.SettingWeekStart, cfg.WeekStart)
		return cfg.WeekStartDay()
	}
	if v == "monday" {
		return time.Monday
	}
	return time.Sunday
}
