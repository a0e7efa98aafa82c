package rules

// Rule declares one suffix-substitution build rule as written in the rules
// file: every file matching Sources is compiled into a sibling file with
// FromSuffix replaced by ToSuffix.
type Rule struct {
	// Sources is a shell-style glob, resolved relative to Base.
	Sources    string
	FromSuffix string
	ToSuffix   string
	// Flags are passed to the compiler verbatim, after the include flags.
	Flags []string
	// Base is the directory the glob and all derived paths are anchored in.
	// Defaults to the directory containing the rules file.
	Base string
}

// BuildPair maps one input file to its single derived output.
type BuildPair struct {
	Input  string
	Output string
}

// CommandTemplate contains the fixed parts of a compiler invocation. It is
// resolved once per run and never consulted for anything else.
type CommandTemplate struct {
	Executable  string
	IncludeDirs []string
	FixedArgs   []string
}

// ToolchainConfig is the unresolved toolchain declaration from the rules
// file. Resolving the compiler path and the include globs against the
// filesystem is the toolchain package's job, not the engine's.
type ToolchainConfig struct {
	Root         string
	Compiler     string
	IncludeGlobs []string
}

// Config is the result of parsing a rules file.
type Config struct {
	Toolchain ToolchainConfig
	Rules     []*Rule
}

// ProcessResult is what the external process runner reports back for one
// invocation. A non-zero ExitCode means the pair failed to build.
type ProcessResult struct {
	ExitCode int
	Stderr   []byte
}
