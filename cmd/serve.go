package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/httpapi"
	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/logger"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/session"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultListen       = ":5000"
	defaultSessionsFile = "sessions.json"
	defaultCodesFile    = "used_codes.json"

	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview web server",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default "+defaultListen+")")
	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview server", zap.String("version", version))

	serveCfg := config.Serve
	if serveCfg == nil {
		serveCfg = &ServeConfig{}
	}

	table, err := openTable(config, logger)
	if err != nil {
		logger.Fatal("opening candidate table", zap.Error(err))
	}
	defer table.Close()

	completer, err := newCompleter(ctx, config, logger)
	if err != nil {
		logger.Fatal("building completion client", zap.Error(err))
	}

	speechClient, err := newSpeechClient(config, logger)
	if err != nil {
		logger.Fatal("building speech client", zap.Error(err))
	}
	if speechClient == nil {
		logger.Fatal("the serve command requires the yandex section for speech synthesis and recognition")
	}

	sessionsFile := serveCfg.SessionsFile
	if sessionsFile == "" {
		sessionsFile = defaultSessionsFile
	}
	codesFile := serveCfg.UsedCodesFile
	if codesFile == "" {
		codesFile = defaultCodesFile
	}

	manager := session.NewManager(
		session.OpenStore(sessionsFile, logger),
		session.OpenUsedCodes(codesFile, logger),
		table,
		logger,
	)

	srv := httpapi.NewServer(
		manager,
		interview.NewEngine(completer, logger),
		scoring.NewEngine(completer, logger),
		speechClient,
		speechClient,
		table,
		logger,
	)
	srv.StaticDir = serveCfg.StaticDir
	if serveCfg.AudioFile != "" {
		srv.QuestionAudioPath = serveCfg.AudioFile
	}

	// Background sweep so idle sessions expire even without traffic.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 10m", func() { manager.ExpireIdle() }); err != nil {
		logger.Fatal("scheduling session sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	listen := serveCfg.Listen
	if listen == "" {
		listen = defaultListen
	}

	httpServer := &http.Server{
		Addr:    listen,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("listening", zap.String("address", listen))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
