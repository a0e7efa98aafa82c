package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/linhlhq/unollvm/pkg/executor"
	"github.com/linhlhq/unollvm/pkg/rules"
	"github.com/linhlhq/unollvm/pkg/toolchain"
)

var buildCmd = &cobra.Command{
	Use:   "build [name=value ...]",
	Short: "Regenerate every derived target that is missing or older than its source",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		keepGoing, err := cmd.Flags().GetBool("keep-going")
		if err != nil {
			return err
		}

		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return err
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

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

		tc, err := toolchain.Resolve(ctx, cfg.Toolchain)
		if err != nil {
			logger.Error().Err(err).Msg("failed to resolve the toolchain")
			return err
		}

		runner := executor.New()
		built := 0

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

			plan := pairs
			if !force {
				plan, err = rules.PlanBuild(pairs)
				if err != nil {
					logger.Error().Err(err).Msg("failed to plan the build")
					return err
				}
			}

			template := rules.CommandTemplate{
				Executable:  tc.Compiler,
				IncludeDirs: tc.IncludeDirs,
				FixedArgs:   rule.Flags,
			}

			bar := getProgressBar(len(plan), fmt.Sprintf("Building %s targets", rule.ToSuffix), !verbose && !dryRun)
			err = rules.Run(ctx, plan, rules.RunOptions{
				Template:  template,
				Runner:    runner,
				Dir:       rule.Base,
				DryRun:    dryRun,
				KeepGoing: keepGoing,
				Jobs:      jobs,
				Progress: func(rules.BuildPair) {
					_ = bar.Add(1)
				},
			})
			if err != nil {
				logger.Error().Err(err).Msg("build failed")
				return err
			}

			built += len(plan)
		}

		if !dryRun {
			logger.Info().Msgf("built %d targets", built)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolP("dry", "n", false, "only print the commands, don't execute anything")
	buildCmd.Flags().BoolP("force", "f", false, "rebuild every target even if it's up to date")
	buildCmd.Flags().BoolP("keep-going", "k", false, "keep building the remaining targets after a failure")
	buildCmd.Flags().IntP("jobs", "j", 1, "number of targets to build concurrently")

	rootCmd.AddCommand(buildCmd)
}

func getProgressBar(length int, desc string, visible bool) *progressbar.ProgressBar {
	if !visible || os.Getenv("CI") != "" {
		return progressbar.NewOptions(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(length,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
