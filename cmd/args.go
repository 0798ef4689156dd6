package cmd

import (
	"fmt"
	"strings"

	"github.com/DominikPott/nvidiaDenoiser/pipeline"
	"github.com/urfave/cli"
)

// Strip unrecognized flags and stray positional arguments from args so that
// they are ignored instead of aborting flag parsing. Everything from the
// first command name onwards is passed through untouched. A recognized flag
// that expects a value but is the last argument yields ErrMissingRequiredInput.
func SanitizeArgs(args []string, flags []cli.Flag, commands []cli.Command) ([]string, error) {
	if len(args) == 0 {
		return args, nil
	}

	known := flagTable(append([]cli.Flag{cli.HelpFlag, cli.VersionFlag}, flags...))
	commandNames := make(map[string]bool)
	for _, command := range commands {
		for _, name := range command.Names() {
			commandNames[name] = true
		}
	}

	out := []string{args[0]}
	for i := 1; i < len(args); i++ {
		arg := args[i]

		if arg == "--" || !strings.HasPrefix(arg, "-") || arg == "-" {
			if commandNames[arg] {
				return append(out, args[i:]...), nil
			}
			logger.Debugf("ignoring unexpected argument %q", arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		inlineValue := false
		if idx := strings.Index(name, "="); idx >= 0 {
			name, inlineValue = name[:idx], true
		}

		takesValue, ok := known[name]
		if !ok {
			logger.Debugf("ignoring unrecognized flag %q", arg)
			continue
		}

		out = append(out, arg)
		if !takesValue || inlineValue {
			continue
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("%w: flag %s has no value", pipeline.ErrMissingRequiredInput, arg)
		}
		i++
		out = append(out, args[i])
	}

	return out, nil
}

// Map every flag name and alias to whether the flag consumes a value.
func flagTable(flags []cli.Flag) map[string]bool {
	table := make(map[string]bool)
	for _, flag := range flags {
		takesValue := true
		switch flag.(type) {
		case cli.BoolFlag, *cli.BoolFlag, cli.BoolTFlag, *cli.BoolTFlag:
			takesValue = false
		}

		for _, name := range strings.Split(flag.GetName(), ",") {
			if name = strings.TrimSpace(name); name != "" {
				table[name] = takesValue
			}
		}
	}
	return table
}
