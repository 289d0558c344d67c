package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/asrvd/repo-guardian/internal/config"
)

var (
	cfgFile      string
	outputFile   string
	outputDir    string
	format       string
	severity     string
	parallel     int
	verbose      bool
	repository   string
	disableRules []string
	rulesFile    string
	historyDB    string
	noHistory    bool
)

var rootCmd = &cobra.Command{
	Use:   "repo-guardian [path...]",
	Short: "Security scanner for GitHub Actions workflow files",
	Long: `Scans GitHub Actions workflow files for common security issues:
hardcoded secrets, unpinned actions, unreviewed third-party actions,
script injection via untrusted event data, and risky triggers. Produces
severity-grouped Markdown reports with remediation guidance.`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .repo-guardian.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "report file (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "write reports into this directory using the <repo>-workflow-scan-<date>.md convention")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "markdown", "output format (markdown, json)")
	rootCmd.PersistentFlags().StringVarP(&severity, "severity", "s", "low", "minimum severity that fails the scan (low, medium, high, critical)")
	rootCmd.PersistentFlags().IntVarP(&parallel, "parallel", "p", 0, "number of files analyzed concurrently (0 = auto)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&repository, "repo", "", "repository identifier used in the report (default: directory name)")
	rootCmd.PersistentFlags().StringSliceVar(&disableRules, "disable-rule", []string{}, "rule ids to disable")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules-file", "", "YAML file with additional custom rules")
	rootCmd.PersistentFlags().StringVar(&historyDB, "history-db", "", "path to the scan history database")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record scans in the history database")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".repo-guardian")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("REPO_GUARDIAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file values and CLI flags.
func loadConfig() *config.Config {
	cfg := config.Load()
	cfg.OutputFile = outputFile
	cfg.OutputDir = outputDir
	cfg.Format = format
	cfg.MinSeverity = severity
	if parallel > 0 {
		cfg.Parallel = parallel
	}
	cfg.Verbose = verbose
	cfg.Repository = repository
	if len(disableRules) > 0 {
		cfg.Rules.Disabled = append(cfg.Rules.Disabled, disableRules...)
	}
	if rulesFile != "" {
		cfg.Rules.CustomRulesPath = rulesFile
	}
	if historyDB != "" {
		cfg.HistoryDB = historyDB
	}
	cfg.NoHistory = noHistory
	return cfg
}

func initLogger() *zap.Logger {
	var logger *zap.Logger
	var err error

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}
