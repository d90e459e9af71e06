package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/log"
)

// globalFlags reads the root command's persistent flags into cfg.
func globalFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return err
	}
	if cfg.LogLevel, err = cmd.Flags().GetString("log-level"); err != nil {
		return err
	}
	if cfg.LogFormat, err = cmd.Flags().GetString("log-format"); err != nil {
		return err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return err
	}

	return nil
}

// newLogger creates the logger for a command, writing to its error stream.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return log.NewLogger(cmd.ErrOrStderr(), cfg.EffectiveLogLevel(), cfg.LogFormat)
}

// loadRuleFile loads the user's rule file into cfg.RuleFile.
//
// If the user explicitly specified a rule file path, a missing file is an
// error. Otherwise the default locations are searched and a missing file is
// not an error.
func loadRuleFile(cfg *config.Config, logger *slog.Logger) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("%w: %s", err, path)
		}
		return fmt.Errorf("failed to load rule file: %w", err)
	}

	logger.Debug("loaded rule file", "path", path, "rules", len(f.Rules))
	cfg.RuleFile = f
	return nil
}

// ruleFiles returns the rule files of cfg in priority order: the user's
// rule file, then the built-in rule set unless disabled.
func ruleFiles(cfg *config.Config) ([]*config.File, error) {
	files := make([]*config.File, 0, 2)
	if cfg.RuleFile != nil {
		files = append(files, cfg.RuleFile)
	}
	if !cfg.NoBuiltin {
		builtin, err := config.Builtin()
		if err != nil {
			return nil, err
		}
		files = append(files, builtin)
	}
	return files, nil
}
