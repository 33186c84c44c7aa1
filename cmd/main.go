package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/cart"
	"github.com/ray-remotestate/posgate/config"
	"github.com/ray-remotestate/posgate/handlers"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/server"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/upstream"
)

const shutdownTimeOut = 10 * time.Second

func main() {
	cfg := config.Init()
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := upstream.New(cfg.GraphQLURL)
	store := session.NewStore(session.Options{
		Policy:       cfg.SessionPolicy,
		Lookup:       api,
		Revalidate:   cfg.SessionRevalidate,
		CookieSecure: cfg.CookieSecure,
	})

	var events notify.Publisher = notify.Nop{}
	if cfg.RabbitMQURL != "" {
		pub, err := notify.DialAMQP(cfg.RabbitMQURL)
		if err != nil {
			logrus.Panicf("failed to connect to rabbitmq, error: %v", err)
		}
		events = pub
		logrus.WithField("exchange", notify.Exchange).Info("publishing events")
	}

	h := handlers.New(api, store, cart.NewRegistry(), events, handlers.Options{
		PollInterval:        cfg.PollInterval,
		KitchenPollInterval: cfg.KitchenPollInterval,
		TicketClockInterval: cfg.TicketClockInterval,
		LateAfterMinutes:    cfg.LateAfterMinutes,
		AllowedOrigins:      cfg.CORSOrigins,
	})
	srv := server.SetupRoutes(h, store, server.Options{
		Secret:      config.SecretKey,
		CORSOrigins: cfg.CORSOrigins,
	})

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "upstream": cfg.GraphQLURL}).Info("server is running")
		if err := srv.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logrus.WithError(err).Error("server stopped")
		}
	}

	logrus.Info("shutting down...")
	var result *multierror.Error
	if err := srv.Shutdown(shutdownTimeOut); err != nil {
		result = multierror.Append(result, err)
	}
	if err := events.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		logrus.WithError(err).Error("unclean shutdown")
		os.Exit(1)
	}
	logrus.Info("system is shut ..zzz")
}
