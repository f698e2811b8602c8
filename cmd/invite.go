package cmd

import (
	"context"
	"log"

	"github.com/kruglovb/ai-interviewer/internal/invite"
	"github.com/kruglovb/ai-interviewer/internal/logger"
	"github.com/kruglovb/ai-interviewer/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Send SMS invitations to screened candidates",
	Run: func(_ *cobra.Command, _ []string) {
		runInvite()
	},
}

func init() {
	rootCmd.AddCommand(inviteCmd)
}

func runInvite() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the invitation run", zap.String("version", version))

	inviteCfg := config.Invite
	if inviteCfg == nil {
		logger.Fatal("the invite section is required to send invitations")
	}
	if inviteCfg.From == "" || inviteCfg.SiteLink == "" {
		logger.Fatal("invite.from and invite.site-link are required")
	}

	accountSID, err := secrets.Load(secrets.Source{
		Name: "twilio account sid",
		File: inviteCfg.AccountSIDFile,
	})
	if err != nil {
		logger.Fatal("loading twilio account sid", zap.Error(err))
	}

	authToken, err := secrets.Load(secrets.Source{
		Name: "twilio auth token",
		File: inviteCfg.AuthTokenFile,
	})
	if err != nil {
		logger.Fatal("loading twilio auth token", zap.Error(err))
	}

	table, err := openTable(config, logger)
	if err != nil {
		logger.Fatal("opening candidate table", zap.Error(err))
	}
	defer table.Close()

	sender := invite.NewTwilioSender(accountSID, authToken, inviteCfg.From)

	inv := invite.New(table, sender, inviteCfg.SiteLink, logger)

	stats, err := inv.Run(ctx)
	if err != nil {
		logger.Fatal("invitation run failed", zap.Error(err))
	}

	logger.Info("done",
		zap.Int("candidates", stats.Candidates),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
}
