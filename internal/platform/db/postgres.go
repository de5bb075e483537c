package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
	gormzap "github.com/VML-Technologies/VML.Perito-sub005/pkg/gormlog"
)

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{Logger: gormzap.New(l, level)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	l.Infow("connected to postgres", "max_open_conns", cfg.Database.MaxOpenConns)
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// MigrationSet picks the tables to migrate. Outside dev the referenced tables
// already exist and belong to the main application, so only owned tables are
// migrated.
func MigrationSet(env cfgpkg.Env) []any {
	if env == cfgpkg.EnvDev {
		return models.All()
	}
	return models.Owned()
}

// Migrate brings the schema up to date for env. gorm's AutoMigrate also
// migrates every table an owned model points at, so outside dev the owned
// tables are migrated with relationships ignored and their foreign keys are
// added afterwards.
func Migrate(db *gorm.DB, env cfgpkg.Env) error {
	set := MigrationSet(env)
	if env == cfgpkg.EnvDev {
		return db.AutoMigrate(set...)
	}
	owned := db.Session(&gorm.Session{})
	owned.Config.IgnoreRelationshipsWhenMigrating = true
	if err := owned.AutoMigrate(set...); err != nil {
		return err
	}
	return createForeignKeys(db, set)
}

func createForeignKeys(db *gorm.DB, values []any) error {
	m := db.Migrator()
	for _, v := range values {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(v); err != nil {
			return fmt.Errorf("parse %T: %w", v, err)
		}
		for _, rel := range stmt.Schema.Relationships.Relations {
			c := rel.ParseConstraint()
			if c == nil || c.Schema != stmt.Schema || c.Schema == c.ReferenceSchema {
				continue
			}
			if m.HasConstraint(v, c.Name) {
				continue
			}
			if err := m.CreateConstraint(v, c.Name); err != nil {
				return fmt.Errorf("create constraint %s: %w", c.Name, err)
			}
		}
	}
	return nil
}

func AutoMigrate(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) error {
	if err := Migrate(db, cfg.Env); err != nil {
		l.Errorw("automigrate_failed", "env", cfg.Env, "err", err)
		return err
	}
	l.Infow("automigrate_completed", "env", cfg.Env, "tables", len(MigrationSet(cfg.Env)))
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
