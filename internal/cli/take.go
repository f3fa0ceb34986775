package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/config"
	"survey-service/internal/infra/remote"
	"survey-service/internal/transport/console"
	"github.com/spf13/cobra"
)

// NewTakeCmd runs an interactive survey in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	var (
		baseURL string
		local   bool
	)
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the survey in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTake(cmd.Context(), *configPath, baseURL, local, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "question service base URL (overrides survey.base_url)")
	cmd.Flags().BoolVar(&local, "local", false, "answer the built-in sample questions without a server")
	return cmd
}

func runTake(ctx context.Context, configPath, baseURL string, local bool, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var service app.QuestionService
	if local {
		service = buildCatalog(config.Default(), nil, nil)
	} else {
		if baseURL == "" {
			baseURL = cfg.Survey.BaseURL
		}
		service = remote.NewQuestionClient(baseURL, config.TTLDuration(cfg.Survey.RequestTimeout, 10*time.Second))
	}

	session := app.NewSurveySession(service,
		app.WithNotificationDelay(config.TTLDuration(cfg.Survey.NotificationDelay, app.DefaultNotificationDelay)),
	)
	defer session.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return console.Run(ctx, session, in, out)
}
