/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Backend.
var _ store.Backend = (*Service)(nil)

// Service stores each collection snapshot as one row of a SQLite table.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

// CollectionInfo describes one stored snapshot
type CollectionInfo struct {
	Name      string
	Bytes     int
	UpdatedAt time.Time
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := newService(db)
	if err := service.initSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func newService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaCollections); err != nil {
		return err
	}
	zap.L().Debug("Database schema ready")
	return nil
}

// Load returns the snapshot stored under key.
func (s *Service) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, queryLoadCollection, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load collection %s: %w", key, err)
	}
	return payload, nil
}

// Save replaces the snapshot stored under key.
func (s *Service) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, querySaveCollection, key, data, s.now().UTC()); err != nil {
		return fmt.Errorf("unable to save collection %s: %w", key, err)
	}
	return nil
}

// Collections lists every stored snapshot by name
func (s *Service) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, queryListCollections)
	if err != nil {
		return nil, fmt.Errorf("unable to list collections: %w", err)
	}
	defer rows.Close()

	var infos []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Bytes, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan collection: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
