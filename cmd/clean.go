package cmd

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/linhlhq/unollvm/pkg/rules"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [name=value ...]",
	Short: "Delete every derived target",
	Long: `Deletes every file a rule would generate, whether or not it is up to date.
Targets that are already absent are skipped, so clean can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := setupContext(cmd)
		if err != nil {
			return err
		}

		logger := zerolog.Ctx(ctx)
		cfg, _, err := loadConfig(ctx, args)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load the rules file")
			return err
		}

		// a failed deletion never stops the remaining rules
		var failures []*rules.DeleteError

		for _, rule := range cfg.Rules {
			sources, err := rules.ResolveSources(rule.Base, rule.Sources)
			if err != nil {
				logger.Error().Err(err).Msg("failed to resolve sources")
				return err
			}

			pairs, err := rules.DerivePairs(sources, rule.FromSuffix, rule.ToSuffix)
			if err != nil {
				logger.Error().Err(err).Msg("failed to derive targets")
				return err
			}

			err = rules.Clean(ctx, pairs)
			if err != nil {
				var cleanErr *rules.CleanError
				if !errors.As(err, &cleanErr) {
					return err
				}

				failures = append(failures, cleanErr.Failures...)
			}
		}

		if len(failures) > 0 {
			err := &rules.CleanError{Failures: failures}
			logger.Error().Err(err).Msg("clean failed")
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
