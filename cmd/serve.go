package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/amosearch/pkg/api"
	"github.com/rubiojr/amosearch/pkg/config"
	"github.com/rubiojr/amosearch/pkg/log"
	"github.com/rubiojr/amosearch/pkg/realtime"
	"github.com/rubiojr/amosearch/pkg/state"
	"github.com/urfave/cli/v3"
)

var serveLog = log.ForService("serve")

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides listen)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

// serve runs the HTTP API until SIGINT or SIGTERM
func serve(ctx context.Context, configPath, listen string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listen != "" {
		cfg.Listen = listen
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(cfg.SignalBuffer)
	detach := hub.Attach(sess.store)
	defer detach()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(sess.store, sess.dispatcher, hub).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		serveLog.Infof("listening on %s (client app %s, API %s)", cfg.Listen, cfg.ClientApp, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// A nil channel blocks forever, so a failed watcher just never fires.
	var fsEvents chan fsnotify.Event
	var fsErrors chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		serveLog.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				serveLog.Warnf("failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			serveLog.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			serveLog.Infof("watching config file for changes: %s", configPath)
		}
		fsEvents, fsErrors = watcher.Events, watcher.Errors
	}

	current := cfg
	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serving HTTP: %w", err)
			}
			return nil
		case <-ctx.Done():
			return shutdown(srv)
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				serveLog.Infof("received SIGHUP, reloading configuration")
				current = reloadConfig(configPath, current, sess.store)
				continue
			}
			fmt.Println("\nShutting down...")
			return shutdown(srv)
		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			serveLog.Infof("config file changed: %s (%s)", event.Name, event.Op)

			// Editors often replace the file; watch the new one.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					serveLog.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					serveLog.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
			current = reloadConfig(configPath, current, sess.store)
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			serveLog.Warnf("config file watcher error: %v", err)
		}
	}
}

// reloadConfig applies the reloadable parts of a changed config file and
// returns the config now in effect.
func reloadConfig(configPath string, current *config.Config, store *state.Store) *config.Config {
	next, err := config.LoadConfig(configPath)
	if err != nil {
		serveLog.Errorf("failed to reload configuration: %v", err)
		return current
	}

	if next.ClientApp != current.ClientApp {
		serveLog.Infof("client app changed from %s to %s", current.ClientApp, next.ClientApp)
		store.Dispatch(state.ClientAppChanged{ClientApp: next.ClientApp})
	}
	if next.Listen != current.Listen || next.APIURL != current.APIURL || next.AuthToken != current.AuthToken {
		serveLog.Warnf("listen, api_url and auth_token changes need a restart")
	}

	// Keep what still needs a restart so the warning is not repeated.
	next.Listen, next.APIURL, next.AuthToken = current.Listen, current.APIURL, current.AuthToken
	return next
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
