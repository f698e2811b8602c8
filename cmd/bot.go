package cmd

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/kruglovb/ai-interviewer/internal/bot"
	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/logger"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/secrets"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/speech"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultVacanciesFile = "vacancies.json"
	defaultBotLogFile    = "bot_candidates.xlsx"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the Telegram interview bot",
	Run: func(_ *cobra.Command, _ []string) {
		runBot()
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot() {
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

	logger.Info("starting the telegram bot", zap.String("version", version))

	botCfg := config.Bot
	if botCfg == nil {
		botCfg = &BotConfig{}
	}

	tokenFile := botCfg.TokenFile
	if tokenFile == "" {
		tokenFile = viper.GetString("bot.token-file")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: tokenFile,
	})
	if err != nil {
		logger.Fatal(
			"loading telegram bot token",
			zap.Error(err),
			zap.String("hint", "set TELEGRAM_TOKEN_FILE environment variable or the 'bot.token-file' key in the configuration file"),
		)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Fatal("connecting to telegram", zap.Error(err))
	}
	logger.Info("authorized", zap.String("bot_username", api.Self.UserName))

	completer, err := newCompleter(ctx, config, logger)
	if err != nil {
		logger.Fatal("building completion client", zap.Error(err))
	}

	// TTS is optional for the bot: without the yandex section questions
	// arrive as plain text.
	speechClient, err := newSpeechClient(config, logger)
	if err != nil {
		logger.Warn("speech synthesis unavailable, questions will be text-only", zap.Error(err))
	}

	vacanciesFile := botCfg.VacanciesFile
	if vacanciesFile == "" {
		vacanciesFile = defaultVacanciesFile
	}
	vacancies := bot.OpenVacancyStore(vacanciesFile, logger)

	logFile := botCfg.LogFile
	if logFile == "" {
		logFile = defaultBotLogFile
	}
	candidateLog, err := sheets.OpenWorkbook(logFile, botCfg.LogSheet, bot.LogHeaders(), logger)
	if err != nil {
		logger.Fatal("opening candidate log", zap.Error(err))
	}
	defer candidateLog.Close()

	var synth speech.Synthesizer
	if speechClient != nil {
		synth = speechClient
	}

	b := bot.New(
		api,
		interview.NewEngine(completer, logger),
		scoring.NewEngine(completer, logger),
		synth,
		vacancies,
		candidateLog,
		logger,
	)
	b.AdminID = botCfg.AdminID
	if botCfg.MinimumFit > 0 {
		b.MinimumFit = botCfg.MinimumFit
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	if err := b.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped", zap.Error(err))
	}

	logger.Info("shutting down")
	api.StopReceivingUpdates()
}
