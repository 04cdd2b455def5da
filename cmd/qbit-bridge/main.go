package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pokerjest/qbittorrent-go/internal/api"
	"github.com/pokerjest/qbittorrent-go/internal/config"
	"github.com/pokerjest/qbittorrent-go/internal/event"
	"github.com/pokerjest/qbittorrent-go/internal/logger"
	"github.com/pokerjest/qbittorrent-go/internal/metrics"
	"github.com/pokerjest/qbittorrent-go/internal/monitor"
	"github.com/pokerjest/qbittorrent-go/internal/store"
	"github.com/pokerjest/qbittorrent-go/pkg/qbittorrent"
	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Config
	if err := config.LoadConfig("."); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	if err := run(cfg, lg); err != nil {
		lg.WithError(err).Fatal("qbit-bridge stopped")
	}
}

func run(cfg *config.Config, lg *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	absPath, _ := filepath.Abs(cfg.Database.Path)
	lg.WithField("path", absPath).Info("opening database")
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	m := metrics.New()
	client, err := newClient(ctx, cfg, st, lg, m)
	if err != nil {
		return err
	}
	baseURL := cfg.Qbittorrent.BaseURL

	bus := event.NewInMemoryBus()
	unsubscribe := event.SubscribeAll(bus, func(e event.Event) {
		m.IncEvent(string(e.Type))
		lg.WithFields(logrus.Fields{"type": e.Type, "id": e.ID}).Debug("event")
	})
	defer unsubscribe()

	mon := monitor.New(client, bus, cfg.Monitor.Interval,
		monitor.WithLogger(lg),
		monitor.WithAfterPoll(func(ctx context.Context, data *torrentclient.AllClientData) {
			m.SetTorrents(data.Torrents)
			if err := st.SaveSession(ctx, baseURL, client.ExportState()); err != nil {
				lg.WithError(err).Warn("could not persist session")
			}
		}),
	)

	// 2. Setup Gin Mode
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	api.InitRoutes(r, api.NewHandlers(client, bus, lg), m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mon.Run(gctx)
	})
	g.Go(func() error {
		lg.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := st.SaveSession(saveCtx, baseURL, client.ExportState()); serr != nil {
		lg.WithError(serr).Warn("could not persist session on shutdown")
	}
	lg.Info("shut down")
	return err
}

// newClient restores a stored session for the configured WebUI, or starts
// without one.
func newClient(ctx context.Context, cfg *config.Config, st *store.Store, lg *logrus.Logger, obs qbittorrent.Observer) (*qbittorrent.Client, error) {
	qcfg := qbittorrent.Config{
		BaseURL:    cfg.Qbittorrent.BaseURL,
		Path:       cfg.Qbittorrent.Path,
		Username:   cfg.Qbittorrent.Username,
		Password:   cfg.Qbittorrent.Password,
		Timeout:    cfg.Qbittorrent.Timeout,
		ProxyURL:   cfg.Qbittorrent.Proxy,
		CookieName: cfg.Qbittorrent.CookieName,
		Logger:     lg,
		Observer:   obs,
	}

	state, ok, err := st.LoadSession(ctx, qcfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if ok && state.Valid(time.Now()) {
		lg.WithField("version", state.Version).Info("reusing stored session")
		return qbittorrent.NewFromState(qcfg, state), nil
	}
	return qbittorrent.New(qcfg), nil
}
