package rules

import (
	"os"

	"github.com/rotisserie/eris"
)

// IsStale reports whether a pair's output has to be regenerated: the output
// is missing or strictly older than the input. Equal timestamps count as
// fresh so that a no-op run stays a no-op.
func IsStale(pair BuildPair) (bool, error) {
	outInfo, err := os.Stat(pair.Output)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return true, nil
		}

		return false, eris.Wrapf(err, "failed to check output %s", pair.Output)
	}

	inInfo, err := os.Stat(pair.Input)
	if err != nil {
		// the input came from the directory listing, it vanishing mid-run is
		// not a staleness question
		return false, eris.Wrapf(err, "failed to check input %s", pair.Input)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// PlanBuild returns the stale subsequence of pairs, preserving their order.
func PlanBuild(pairs []BuildPair) ([]BuildPair, error) {
	plan := make([]BuildPair, 0, len(pairs))
	for _, pair := range pairs {
		stale, err := IsStale(pair)
		if err != nil {
			return nil, err
		}

		if stale {
			plan = append(plan, pair)
		}
	}

	return plan, nil
}

// PlanClean returns every derived output regardless of staleness or whether
// it currently exists.
func PlanClean(pairs []BuildPair) []string {
	outputs := make([]string, len(pairs))
	for idx, pair := range pairs {
		outputs[idx] = pair.Output
	}

	return outputs
}
