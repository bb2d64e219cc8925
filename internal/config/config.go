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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recytoken-up-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	sweepInterval, err := getEnvDuration("INVOICE_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnvString("STORAGE_BACKEND", models.BackendSQLite))
	if backend != models.BackendSQLite && backend != models.BackendPostgres {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q (expected %s or %s)", backend, models.BackendSQLite, models.BackendPostgres)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "recytoken.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Storage: models.StorageConfig{
			Backend:     backend,
			PostgresURL: getEnvString("POSTGRES_URL", ""),
		},
		Seed: models.SeedConfig{
			File: getEnvString("SEED_FILE", ""),
		},
		HTTP: models.HTTPConfig{
			Addr:            getEnvString("HTTP_ADDR", ":8080"),
			ExposeMetrics:   getEnvBool("HTTP_EXPOSE_METRICS", true),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Kafka: models.KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnvString("KAFKA_TOPIC", "recytoken-entity-changes"),
		},
		Formance: models.FormanceConfig{
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "recytoken-up"),
		},
		Prime: models.PrimeConfig{
			AccessKey:  getEnvString("PRIME_ACCESS_KEY", ""),
			Passphrase: getEnvString("PRIME_PASSPHRASE", ""),
			SigningKey: getEnvString("PRIME_SIGNING_KEY", ""),
		},
		Geocoder: models.GeocoderConfig{
			URL:       getEnvString("GEOCODER_URL", ""),
			UserAgent: getEnvString("GEOCODER_USER_AGENT", "recytoken-up-go"),
			Timeout:   geocoderTimeout,
		},
		Sweeper: models.SweeperConfig{
			Interval: sweepInterval,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
