// FILE: lixenwraith/proptree/example/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/proptree"
)

// AppConfig represents our application configuration
type AppConfig struct {
	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`

	Database struct {
		URL         string        `toml:"url"`
		MaxConns    int           `toml:"max_conns"`
		IdleTimeout time.Duration `toml:"idle_timeout"`
	} `toml:"database"`

	Features struct {
		RateLimit bool `toml:"rate_limit"`
		Caching   bool `toml:"caching"`
	} `toml:"features"`
}

const configFilePath = "config.toml"

func main() {
	// Create configuration with defaults
	defaults := &AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 8080
	defaults.Database.MaxConns = 10
	defaults.Database.IdleTimeout = 30 * time.Second

	// Build the layered tree
	tree, err := proptree.NewBuilder("app").
		WithDefaults(defaults).
		WithEnvPrefix("MYAPP_").
		WithFile(configFilePath).
		Build()
	if err != nil && !errors.Is(err, proptree.ErrFileNotFound) {
		log.Fatal("Failed to build tree:", err)
	}

	// Observe the whole server section and one specific leaf
	server := proptree.FindByPath(tree, "server")
	server.OnChildUpdated(func(child proptree.Property) {
		log.Printf("📝 server changed: %s", proptree.FullPath(child))
	})
	if rateLimit, ok := proptree.FindByPathAs[*proptree.Value[bool]](tree, "features.rate_limit"); ok {
		rateLimit.OnUpdated(func(proptree.Property) {
			if rateLimit.Get() {
				log.Println("Rate limiting enabled")
			} else {
				log.Println("Rate limiting disabled")
			}
		})
	}

	logTree(tree)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := proptree.DefaultWatchOptions()
	opts.Debounce = 200 * time.Millisecond
	w, err := proptree.Watch(ctx, configFilePath, opts)
	if err != nil {
		log.Fatal("Failed to watch config file:", err)
	}
	defer w.Close()

	log.Printf("Watching %s for changes. Press Ctrl+C to exit.", w.Path())

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	// Reloads are applied here, on the goroutine that owns the tree
	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			return

		case r, ok := <-w.Events():
			if !ok {
				return
			}
			if r.Err != nil {
				if errors.Is(r.Err, proptree.ErrFileNotFound) {
					log.Println("⚠️  Config file was deleted!")
				} else {
					log.Printf("❌ Failed to reload config: %v", r.Err)
				}
				continue
			}
			n, err := proptree.Overlay(tree, r.Group, false)
			if err != nil {
				log.Printf("❌ Some values could not be applied: %v", err)
			}
			log.Printf("Reload applied, %d leaves assigned, changed: %v", n, r.Changed)

		case <-ticker.C:
			port, _ := proptree.ValueAt[int](tree, "server.port")
			log.Printf("Server still running on port %d", port)
		}
	}
}

func logTree(tree *proptree.Group) {
	var cfg AppConfig
	if err := proptree.Scan(tree, &cfg); err != nil {
		log.Printf("scan failed: %v", err)
		return
	}
	log.Println("Current configuration:")
	log.Printf("  Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("  Database: %s (max_conns=%d, idle_timeout=%s)",
		cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.IdleTimeout)
	log.Printf("  Features: rate_limit=%v, caching=%v",
		cfg.Features.RateLimit, cfg.Features.Caching)
}

// Example config.toml file:
/*
[server]
host = "localhost"
port = 8080

[database]
url = "postgres://localhost/myapp"
max_conns = 25
idle_timeout = "30s"

[features]
rate_limit = true
caching = false
*/
