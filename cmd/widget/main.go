package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/widgetlabs/chatbot-widget/internal/collab"
	"github.com/widgetlabs/chatbot-widget/internal/config"
	"github.com/widgetlabs/chatbot-widget/internal/handler"
	"github.com/widgetlabs/chatbot-widget/internal/service/provider"
	"github.com/widgetlabs/chatbot-widget/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	notices := collab.NewNoticeBoard()
	ctrl := buildController(ctx, cfg, notices)
	defer ctrl.Stop()

	router := handler.NewRouter(ctrl, notices)

	startServer(ctx, cfg.Server, router)
}

func buildController(ctx context.Context, cfg *config.Config, notices *collab.NoticeBoard) *session.Controller {
	var responder session.ResponseProvider
	if cfg.AI.Enabled() {
		eino, err := provider.NewEino(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize ark provider, falling back to static replies")
		} else {
			log.Info().Str("model", cfg.AI.Model).Msg("ark response provider initialized")
			responder = eino
		}
	}
	if responder == nil {
		responder = &provider.Static{
			Reply:   cfg.Widget.CannedReply,
			Latency: cfg.Widget.ReplyDelay,
		}
		log.Info().Dur("latency", cfg.Widget.ReplyDelay).Msg("using static response provider")
	}

	deps := session.Deps{
		Provider:   responder,
		Clipboard:  collab.SystemClipboard{},
		Confirmer:  collab.PreConfirmed(),
		Downloader: collab.DirDownloader{Dir: cfg.Widget.ExportDir},
		Notifier:   notices,
	}

	return session.New(session.Config{
		TickInterval:  cfg.Widget.TickInterval,
		WelcomeDelay:  cfg.Widget.WelcomeDelay,
		PulseDuration: cfg.Widget.PulseDuration,
		FontMin:       cfg.Widget.FontMin,
		FontMax:       cfg.Widget.FontMax,
		FontSize:      cfg.Widget.FontSize,
		WelcomeText:   cfg.Widget.WelcomeText,
	}, deps)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("chat widget server listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
