package cmd

import (
	"context"
	"log"

	"github.com/kruglovb/ai-interviewer/internal/headhunter"
	"github.com/kruglovb/ai-interviewer/internal/logger"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/scraper"
	"github.com/kruglovb/ai-interviewer/internal/screening"
	"github.com/kruglovb/ai-interviewer/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search resumes on hh.ru, screen them and fill the candidate table",
	Run: func(cmd *cobra.Command, _ []string) {
		scrape(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before writing candidate rows")
	scrapeCmd.Flags().StringP("vacancy-file", "v", "", "vacancy description file (.docx or plain text)")
	viper.BindPFlag("scrape.vacancy-file", scrapeCmd.Flags().Lookup("vacancy-file"))
}

func scrape(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume scrape", zap.String("version", version))

	scrapeCfg := config.Scrape
	if scrapeCfg == nil || scrapeCfg.Search == nil {
		logger.Fatal("the scrape.search section is required to search resumes")
	}

	tokenFile := scrapeCfg.TokenFile
	if tokenFile == "" {
		tokenFile = viper.GetString("scrape.token-file")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: tokenFile,
	})
	if err != nil {
		logger.Fatal(
			"loading headhunter token",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'scrape.token-file' key in the configuration file"),
		)
	}

	hh := headhunter.New(ctx, logger, token)
	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}

	vacancyFile := scrapeCfg.VacancyFile
	if vacancyFile == "" {
		vacancyFile = viper.GetString("scrape.vacancy-file")
	}
	if vacancyFile == "" {
		logger.Fatal("a vacancy description file is required (--vacancy-file or scrape.vacancy-file)")
	}

	vacancyText, err := scraper.LoadVacancyText(vacancyFile)
	if err != nil {
		logger.Fatal("loading vacancy text", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config, logger)
	if err != nil {
		logger.Fatal("building completion client", zap.Error(err))
	}

	table, err := openTable(config, logger)
	if err != nil {
		logger.Fatal("opening candidate table", zap.Error(err))
	}
	defer table.Close()

	if cmd.Flag("auto-aprove").Value.String() == "false" {
		prompt := promptui.Select{
			Label: "Search resumes and append approved candidates to the table. Proceed?",
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	screeningCfg := &screening.Config{MinimumFitScore: scrapeCfg.MinimumFitScore}

	s := scraper.New(hh, scoring.NewEngine(completer, logger), table, logger)

	report, err := s.Run(ctx, scrapeCfg.Search, vacancyText, screeningCfg)
	if err != nil {
		logger.Fatal("scrape failed", zap.Error(err))
	}

	logger.Info("done",
		zap.Int("found", report.Found),
		zap.Int("fetched", report.Fetched),
		zap.Int("approved", report.Approved),
		zap.Int("appended", report.Appended),
	)
}
