// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/logshift/pkg/config"
	"github.com/walteh/logshift/pkg/log"
	"github.com/walteh/logshift/pkg/rewrite"
	"github.com/walteh/logshift/pkg/status"
	"github.com/walteh/logshift/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	rootDir    string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logshift",
		Short: "Rewrite logging call sites across a source tree",
		Long: `logshift walks a directory tree of source files and renames every call
site of one logging facility to another (Log.d(TAG, "msg") becomes
Logger.d(TAG, "msg")), swapping the import statement along the way.
Files are rewritten in place, one at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMigrate,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".logshift.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "override the root directory to rewrite")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		userLogger := log.NewUserLogger(ctx)
		userLogger.LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}

// runMigrate loads the configuration and runs the migration over the tree
func runMigrate(cmd *cobra.Command, args []string) error {
	// Set up logger
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	// Load config
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	// Override root if provided
	if rootDir != "" {
		cfg.Root = rootDir
	}

	// Wire up the run
	console := log.New(os.Stdout, logLevel)
	userLogger := log.NewUserLogger(ctx)
	statusMgr := status.New(cfg.Root, &logger)

	w, err := walker.New(walker.Options{
		Config:     cfg,
		Rewriter:   rewrite.NewRegexRewriter(),
		StatusMgr:  statusMgr,
		Console:    console,
		UserLogger: userLogger,
	})
	if err != nil {
		return errors.Errorf("creating walker: %w", err)
	}

	console.Header(cfg.String())

	summary, err := w.Run(ctx)
	if err != nil {
		return errors.Errorf("running migration: %w", err)
	}

	console.LogNewline()
	formatter := status.NewDefaultFileFormatter()
	userLogger.LogRunChange(formatter.FormatSummary(
		summary.Rewritten, summary.Unchanged, summary.Skipped, summary.Replacements))

	return nil
}

// loadConfig reads the config file, falling back to the stock migration when
// the default config file is simply absent. An explicitly passed config path
// must exist.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if cmd.Flags().Changed("config") {
			return nil, errors.Errorf("config file does not exist: %s", configFile)
		}
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, errors.Errorf("validating default config: %w", err)
		}
		return cfg, nil
	}

	return config.Load(ctx, configFile)
}
