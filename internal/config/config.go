// Package config assembles the run configuration for the ingest pipeline:
// the dataset list, the storage backend and its connection string, and the
// knobs that shape one run.
//
// Sources are layered flag > environment > default. Flags are parsed by the
// command; this package supplies the environment lookups (PG_* connection
// settings, SQLITE_PATH) and the JSON dataset file loader. Decoding is plain
// encoding/json; the dataset file is a JSON array of descriptors:
//
//	[
//	  {
//	    "name": "zones",
//	    "url": "https://.../taxi_zone_lookup.csv",
//	    "format": "csv",
//	    "table": "taxi_zones",
//	    "columns": [
//	      { "name": "locationid", "type": "integer", "required": true },
//	      { "name": "borough", "type": "text" }
//	    ]
//	  }
//	]
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"nytaxi/internal/dataset"
)

// Config is one run's assembled configuration.
type Config struct {
	// Datasets to ingest, in run order.
	Datasets []dataset.Descriptor

	// Backend is the storage kind ("postgres", "sqlite").
	Backend string

	// DSN is the storage connection string.
	DSN string

	// BatchSize caps rows per insert batch. Non-positive falls back to the
	// runner's default.
	BatchSize int

	// Parallel loads datasets concurrently instead of in config order.
	Parallel bool

	// FetchTimeout bounds each HTTP download. Zero means no limit.
	FetchTimeout time.Duration

	// DryRun fetches and reconciles but never touches storage.
	DryRun bool

	// Metrics selects the reporting backend.
	Metrics Metrics
}

// Metrics selects where run metrics go. The zero value reports nothing.
type Metrics struct {
	// Backend is "none", "prometheus" or "datadog". Empty means none.
	Backend string

	// PushgatewayURL is the Prometheus Pushgateway base URL.
	PushgatewayURL string

	// StatsdAddr is the DogStatsD address, e.g. "127.0.0.1:8125".
	StatsdAddr string
}

// Load reads the dataset list from a JSON config file. An empty path returns
// the built-in targets.
func Load(path string) ([]dataset.Descriptor, error) {
	if path == "" {
		return dataset.Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var ds []dataset.Descriptor
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return ds, nil
}

// Filter keeps only the named descriptors, preserving config order. Unknown
// names are an error so a typo cannot silently run the full list.
func Filter(ds []dataset.Descriptor, keep []string) ([]dataset.Descriptor, error) {
	if len(keep) == 0 {
		return ds, nil
	}
	byName := make(map[string]bool, len(ds))
	for _, d := range ds {
		byName[d.Name] = true
	}
	want := make(map[string]bool, len(keep))
	for _, name := range keep {
		if !byName[name] {
			return nil, fmt.Errorf("config: unknown dataset %q", name)
		}
		want[name] = true
	}
	out := make([]dataset.Descriptor, 0, len(want))
	for _, d := range ds {
		if want[d.Name] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Postgres holds the connection settings for the default backend.
type Postgres struct {
	User string
	Pass string
	Host string
	Port string
	DB   string
}

// PostgresFromEnv reads PG_USER, PG_PASS, PG_HOST, PG_PORT and PG_DB,
// defaulting to the local development database root/root@localhost:5432/ny_taxi.
func PostgresFromEnv() Postgres {
	return Postgres{
		User: envOr("PG_USER", "root"),
		Pass: envOr("PG_PASS", "root"),
		Host: envOr("PG_HOST", "localhost"),
		Port: envOr("PG_PORT", "5432"),
		DB:   envOr("PG_DB", "ny_taxi"),
	}
}

// DSN renders the URL form pgx accepts. Credentials are escaped, so
// passwords with '@' or '/' survive.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Pass),
		Host:   net.JoinHostPort(p.Host, p.Port),
		Path:   "/" + p.DB,
	}
	return u.String()
}

// SQLitePathFromEnv reads SQLITE_PATH, defaulting to a database file in the
// working directory.
func SQLitePathFromEnv() string {
	return envOr("SQLITE_PATH", "nytaxi.db")
}

// SQLiteDSN renders a file DSN for the sqlite backend, creating the database
// on first open.
func SQLiteDSN(path string) string {
	return "file:" + url.PathEscape(path) + "?mode=rwc"
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
