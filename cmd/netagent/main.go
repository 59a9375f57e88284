package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"netagent/internal/config"
	"netagent/internal/logging"
	"netagent/internal/service"
	"netagent/internal/transcript"
)

var (
	// Global flags
	verbose    bool
	configPath string
	serverURL  string
	timeout    time.Duration

	// Resolved at startup
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "netagent",
	Short: "netagent - business network management assistant",
	Long: `netagent is a chat front end for a business network service.

Free text is filed either as a memo or as a question: text with a "?" or
a query word ("알려", "찾아", "전화번호", ...) is asked, anything else is
stored as a memo. Business-card photos are read by the service, shown for
confirmation, and saved as contacts.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}

		// The interactive chat owns the terminal; it only writes file logs.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stderr"}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat(cmd)
	},
}

// setup loads .env, the config file and flag overrides, then starts file
// logging.
func setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if serverURL != "" {
		loaded.Server.BaseURL = serverURL
	}
	if timeout > 0 {
		loaded.Server.Timeout = timeout.String()
	}
	if verbose {
		loaded.Logging.DebugMode = true
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded

	if err := logging.Initialize(logging.Options{
		Dir:        cfg.LogsDir(),
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat(),
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Boot("Config loaded from %s (server=%s timeout=%s)", path, cfg.Server.BaseURL, cfg.GetTimeout())
	return nil
}

// newClient builds the service client from the resolved config.
func newClient() *service.Client {
	return service.New(cfg.Server.BaseURL, service.WithTimeout(cfg.GetTimeout()))
}

// openStore opens the transcript database.
func openStore() (*transcript.Store, error) {
	store, err := transcript.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript store: %w", err)
	}
	return store, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.netagent/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Service base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (overrides config)")

	rootCmd.Flags().StringVar(&resumeID, "resume", "", "Resume a stored session by id")

	sendCmd.Flags().StringVar(&sendSessionID, "session", "", "Append to a stored session")
	cardCmd.Flags().BoolVarP(&cardYes, "yes", "y", false, "Save the extracted card without asking")

	sessionsCmd.AddCommand(sessionsShowCmd, sessionsDeleteCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(sendCmd, cardCmd, sessionsCmd, statusCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
