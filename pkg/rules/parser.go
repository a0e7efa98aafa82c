package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
)

type parserCtx struct {
	ctx          context.Context
	optionValues map[string]string
	options      map[string]string
	yamlCache    map[string]interface{}
	filepath     string
	baseDir      string
	toolchain    *ToolchainConfig
	rules        []*Rule
}

func getCtx(thread *starlark.Thread) *parserCtx {
	return thread.Local("parserCtx").(*parserCtx)
}

func scriptInfo(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	log(ctx.ctx).Info().
		Msgf("%s:%d:%d: %s", filepath.Base(ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

func scriptWarn(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	log(ctx.ctx).Warn().
		Msgf("%s:%d:%d: %s", filepath.Base(ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

func rule(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var flags *starlark.List

	decl := new(Rule)
	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "sources", &decl.Sources, "from_suffix", &decl.FromSuffix,
		"to_suffix", &decl.ToSuffix, "flags?", &flags, "base?", &decl.Base)
	if err != nil {
		return nil, err
	}

	if decl.Sources == "" {
		return nil, eris.New("rule: sources must not be empty")
	}

	if decl.FromSuffix == "" || decl.ToSuffix == "" {
		return nil, eris.New("rule: from_suffix and to_suffix must not be empty")
	}

	if decl.FromSuffix == decl.ToSuffix {
		return nil, eris.Errorf("rule: from_suffix and to_suffix are both %s, every output would overwrite its input", decl.FromSuffix)
	}

	ctx := getCtx(thread)
	decl.Base, err = normalizePath(ctx.baseDir, decl.Base)
	if err != nil {
		return nil, err
	}

	decl.Flags, err = stringList(flags, "flags")
	if err != nil {
		return nil, err
	}

	ctx.rules = append(ctx.rules, decl)
	return starlark.None, nil
}

func toolchainDecl(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var root string
	var compiler string
	var includeGlobs *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "root", &root, "compiler", &compiler,
		"include_globs?", &includeGlobs)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if ctx.toolchain != nil {
		return nil, eris.New("toolchain: declared twice, only one toolchain is supported")
	}

	if compiler == "" {
		return nil, eris.New("toolchain: compiler must not be empty")
	}

	root, err = expandHome(root)
	if err != nil {
		return nil, err
	}

	globs, err := stringList(includeGlobs, "include_globs")
	if err != nil {
		return nil, err
	}

	ctx.toolchain = &ToolchainConfig{
		Root:         root,
		Compiler:     compiler,
		IncludeGlobs: globs,
	}
	return starlark.None, nil
}

func option(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.String
	var help string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &defaultValue, "help?", &help)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	ctx.options[name] = help

	value, ok := ctx.optionValues[name]
	if ok {
		return starlark.String(value), nil
	}

	return defaultValue, nil
}

// ParseFile executes the given rules file and returns the declared toolchain
// and rules. options carries name=value overrides from the command line; the
// option() builtin prefers them over its declared default.
func ParseFile(ctx context.Context, filename string, options map[string]string) (*Config, error) {
	filename, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	builtins := starlark.StringDict{
		"OS":             starlark.String(runtime.GOOS),
		"ARCH":           starlark.String(runtime.GOARCH),
		"info":           starlark.NewBuiltin("info", starInfo),
		"warn":           starlark.NewBuiltin("warn", starWarn),
		"fail":           starlark.NewBuiltin("fail", starFail),
		"option":         starlark.NewBuiltin("option", option),
		"getenv":         starlark.NewBuiltin("getenv", getenv),
		"read_yaml":      starlark.NewBuiltin("read_yaml", readYaml),
		"isdir":          starlark.NewBuiltin("isdir", starIsdir),
		"isfile":         starlark.NewBuiltin("isfile", starIsfile),
		"toolchain_root": starlark.NewBuiltin("toolchain_root", toolchainRoot),
		"toolchain":      starlark.NewBuiltin("toolchain", toolchainDecl),
		"rule":           starlark.NewBuiltin("rule", rule),
	}

	thread := &starlark.Thread{
		Name: "main",
		Print: func(thread *starlark.Thread, msg string) {
			log(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	threadCtx := parserCtx{
		ctx:          ctx,
		filepath:     filename,
		baseDir:      filepath.Dir(filename),
		optionValues: options,
		options:      make(map[string]string),
		yamlCache:    make(map[string]interface{}),
		rules:        make([]*Rule, 0),
	}
	thread.SetLocal("parserCtx", &threadCtx)

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read file %s", filename)
	}

	_, err = starlark.ExecFile(thread, filepath.Base(filename), script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", filename, evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed to execute %s", filename)
	}

	if threadCtx.toolchain == nil {
		return nil, eris.Errorf("%s did not declare a toolchain", filename)
	}

	if len(threadCtx.rules) == 0 {
		log(ctx).Warn().Msgf("%s declares no rules, there is nothing to build", filename)
	}

	return &Config{
		Toolchain: *threadCtx.toolchain,
		Rules:     threadCtx.rules,
	}, nil
}
