package rules

// MaterializeCommand produces the exact argv that regenerates pair.Output.
// The order is fixed: executable, one -I flag per include directory, the
// fixed args, -o, output, input. Identical inputs always produce an
// identical argv; nothing here reads the filesystem.
func MaterializeCommand(pair BuildPair, template CommandTemplate) []string {
	argv := make([]string, 0, len(template.IncludeDirs)+len(template.FixedArgs)+4)

	argv = append(argv, template.Executable)
	for _, dir := range template.IncludeDirs {
		argv = append(argv, "-I"+dir)
	}

	argv = append(argv, template.FixedArgs...)
	argv = append(argv, "-o", pair.Output, pair.Input)

	return argv
}
