package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-analyzer/internal/agent"
	"github.com/fmuoria/interview-analyzer/internal/config"
	"github.com/fmuoria/interview-analyzer/internal/logger"
)

// Runtime carries the configuration, logger and agent shared by every command.
// They are built once the command line has been parsed.
type Runtime struct {
	configPath string
	logLevel   string

	cfg   *config.Config
	log   *logger.Logger
	agent *agent.InterviewAgent
}

// Config returns the loaded configuration
func (rt *Runtime) Config() *config.Config { return rt.cfg }

// Logger returns the application logger
func (rt *Runtime) Logger() *logger.Logger { return rt.log }

// Agent returns the interview agent
func (rt *Runtime) Agent() *agent.InterviewAgent { return rt.agent }

// CommandFactory builds an extra subcommand bound to the runtime
type CommandFactory func(rt *Runtime) *cobra.Command

// NewRootCommand builds the interview-analyzer command tree
func NewRootCommand(extra ...CommandFactory) *cobra.Command {
	rt := &Runtime{}

	root := &cobra.Command{
		Use:           "interview-analyzer",
		Short:         "Score interview and group discussion transcripts",
		Long:          "MentorFlow interview analytics: per-speaker sentiment, confidence, empathy, filler and domain knowledge scoring with a hire recommendation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if rt.agent == nil {
				return nil
			}
			return rt.agent.Close()
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default is the user config directory)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(rt),
		newAnalyzeCommand(rt),
		newDomainsCommand(rt),
	)
	for _, factory := range extra {
		root.AddCommand(factory(rt))
	}

	return root
}

// setup loads configuration and builds the agent
func (rt *Runtime) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if rt.configPath != "" {
		cfg, err = config.LoadFrom(rt.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.ApplyToEnv()

	rt.cfg = cfg
	rt.log = logger.NewWithLevel(cfg.LogLevel)
	rt.log.Logger.SetOutput(cmd.ErrOrStderr())

	rt.agent, err = agent.New(cfg, rt.log.Component("agent"))
	if err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	return nil
}
