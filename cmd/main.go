package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linhlhq/unollvm/pkg/rules"
)

var rootCmd = &cobra.Command{
	Use:   "flamake",
	Short: "Suffix-rule build tool for flattened test binaries",
	Long: `flamake parses the first build.star file it finds, walking up from the
current directory, and rebuilds every derived target that is missing or older
than its source. Invoked without a subcommand it lists the declared rules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := setupContext(cmd)
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig(ctx, args)
		if err != nil {
			return err
		}

		fmt.Println("Declared rules:")
		for _, rule := range cfg.Rules {
			fmt.Printf(" * %s -> %s  (%s in %s)\n", rule.FromSuffix, rule.ToSuffix, rule.Sources, rule.Base)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every command and skipped file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode propagates the failing compiler's exit code where one exists;
// structural errors map to 1.
func exitCode(err error) int {
	var procErr *rules.ProcessError
	if errors.As(err, &procErr) && procErr.ExitCode > 0 {
		return procErr.ExitCode
	}

	var buildErr *rules.BuildError
	if errors.As(err, &buildErr) {
		return buildErr.ExitCode()
	}

	return 1
}
