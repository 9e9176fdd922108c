package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindfulai/mindful-shell/internal/config"
	"github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
	applog "github.com/mindfulai/mindful-shell/pkg/log"
)

var (
	backendURL     string
	backendTimeout time.Duration
	historyWindow  int
	logLevel       string
)

// rootCmd runs an interactive chat session against the backend.
var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Chat with the MindfulAI backend from a terminal",
	Long: `Open a chat session against the MindfulAI backend.

Type a message and press enter to send it. Commands:
  /resources  - show the resources panel
  /profile    - show the current profile
  /followup   - schedule a follow-up check-in
  /quit       - end the session`,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	rootCmd.Flags().StringVar(&backendURL, "backend", "", "chatbot backend base URL (overrides BACKEND_URL)")
	rootCmd.Flags().DurationVar(&backendTimeout, "timeout", 0, "backend request timeout (overrides BACKEND_TIMEOUT)")
	rootCmd.Flags().IntVar(&historyWindow, "history", 0, "messages of history sent with each turn (overrides CHAT_HISTORY_WINDOW)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("配置加载失败: %w", err)
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if backendTimeout > 0 {
		cfg.Backend.Timeout = backendTimeout
	}
	if historyWindow > 0 {
		cfg.Chat.HistoryWindow = historyWindow
	}

	logger, err := applog.New(logLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc := chat.NewService(backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		chat.WithLogger(logger),
		chat.WithHistoryWindow(cfg.Chat.HistoryWindow),
		chat.WithFollowUpDays(cfg.Chat.FollowUpDays),
	)
	defer svc.Wait()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting chat", zap.String("backend", cfg.Backend.BaseURL))
	return newREPL(svc, cmd.InOrStdin(), cmd.OutOrStdout()).run(ctx)
}
