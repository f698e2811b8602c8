package cmd

import (
	"context"
	"log"

	"github.com/kruglovb/ai-interviewer/internal/ai"
	"github.com/kruglovb/ai-interviewer/internal/ai/gemini"
	"github.com/kruglovb/ai-interviewer/internal/headhunter"
	"github.com/kruglovb/ai-interviewer/internal/secrets"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/speech"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "ai-interviewer"
)

type Config struct {
	UserAgent string `mapstructure:"user-agent"`

	Table  *TableConfig  `mapstructure:"table"`
	Gemini *GeminiConfig `mapstructure:"gemini"`
	Yandex *YandexConfig `mapstructure:"yandex"`

	Serve  *ServeConfig  `mapstructure:"serve"`
	Bot    *BotConfig    `mapstructure:"bot"`
	Scrape *ScrapeConfig `mapstructure:"scrape"`
	Invite *InviteConfig `mapstructure:"invite"`
}

type TableConfig struct {
	File  string `mapstructure:"file"`
	Sheet string `mapstructure:"sheet"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type YandexConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	FolderID   string `mapstructure:"folder-id"`
	Voice      string `mapstructure:"voice"`
}

type ServeConfig struct {
	Listen        string `mapstructure:"listen"`
	StaticDir     string `mapstructure:"static-dir"`
	SessionsFile  string `mapstructure:"sessions-file"`
	UsedCodesFile string `mapstructure:"used-codes-file"`
	AudioFile     string `mapstructure:"audio-file"`
}

type BotConfig struct {
	TokenFile     string `mapstructure:"token-file"`
	AdminID       int64  `mapstructure:"admin-id"`
	VacanciesFile string `mapstructure:"vacancies-file"`
	LogFile       string `mapstructure:"log-file"`
	LogSheet      string `mapstructure:"log-sheet"`
	MinimumFit    int    `mapstructure:"minimum-fit"`
}

type ScrapeConfig struct {
	TokenFile       string                         `mapstructure:"token-file"`
	VacancyFile     string                         `mapstructure:"vacancy-file"`
	MinimumFitScore float64                        `mapstructure:"minimum-fit-score"`
	Search          *headhunter.ResumeSearchParams `mapstructure:"search"`
}

type InviteConfig struct {
	AccountSIDFile string `mapstructure:"account-sid-file"`
	AuthTokenFile  string `mapstructure:"auth-token-file"`
	From           string `mapstructure:"from"`
	SiteLink       string `mapstructure:"site-link"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ai-interviewer scrapes resumes from hh.ru, screens candidates and runs automated first-round interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("scrape.token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("bot.token-file", "TELEGRAM_TOKEN_FILE"); err != nil {
		log.Fatalf("binding TELEGRAM_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ai-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// openTable opens the candidate workbook named in the config, falling
// back to candidates.xlsx in the current directory.
func openTable(config *Config, logger *zap.Logger) (*sheets.Workbook, error) {
	file := "candidates.xlsx"
	sheet := ""
	if config != nil && config.Table != nil {
		if config.Table.File != "" {
			file = config.Table.File
		}
		sheet = config.Table.Sheet
	}

	return sheets.OpenWorkbook(file, sheet, nil, logger)
}

// newCompleter builds the Gemini completion client from the config.
func newCompleter(ctx context.Context, config *Config, logger *zap.Logger) (ai.Completer, error) {
	var keyFile, model string
	if config != nil && config.Gemini != nil {
		keyFile = config.Gemini.APIKeyFile
		model = config.Gemini.Model
	}
	if keyFile == "" {
		keyFile = viper.GetString("gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
	if err != nil {
		return nil, err
	}

	return gemini.New(ctx, apiKey, model, logger)
}

// newSpeechClient builds the Yandex SpeechKit client, or returns nil
// when the yandex section is absent.
func newSpeechClient(config *Config, logger *zap.Logger) (*speech.YandexClient, error) {
	if config == nil || config.Yandex == nil {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "yandex speechkit api key",
		File: config.Yandex.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	client := speech.NewYandexClient(apiKey, config.Yandex.FolderID, logger)
	if config.Yandex.Voice != "" {
		client.Voice = config.Yandex.Voice
	}

	return client, nil
}
