package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/manifest"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

var setCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Write a value to a command, coerced to its manifest-declared type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, raw := args[0], args[1]

		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		entries, err := c.Manifest()
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		entry, ok := findEntry(entries, name)
		if !ok {
			return fmt.Errorf("set %q: unknown command", name)
		}

		v, err := parseValue(entry.Type, raw)
		if err != nil {
			return fmt.Errorf("set %q: %w", name, err)
		}

		if err := c.Set(name, v); err != nil {
			return fmt.Errorf("set %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <- %s\n", name, v.String())
		return nil
	},
}

func findEntry(entries []manifest.Entry, name string) (manifest.Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return manifest.Entry{}, false
}

// parseValue coerces a command-line string into the wiretype.Value shape
// entry's declared type requires.
func parseValue(t wiretype.Type, raw string) (wiretype.Value, error) {
	switch t {
	case wiretype.Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return wiretype.Value{}, fmt.Errorf("%q is not a boolean", raw)
		}
		return wiretype.Bool(b), nil
	case wiretype.Integer:
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return wiretype.Value{}, fmt.Errorf("%q is not an integer", raw)
		}
		return wiretype.Int(int32(i)), nil
	case wiretype.Float:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return wiretype.Value{}, fmt.Errorf("%q is not a float", raw)
		}
		return wiretype.Float32(float32(f)), nil
	case wiretype.Double:
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return wiretype.Value{}, fmt.Errorf("%q is not a double", raw)
		}
		return wiretype.Float64(d), nil
	case wiretype.String:
		return wiretype.Str(raw), nil
	case wiretype.Long:
		l, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return wiretype.Value{}, fmt.Errorf("%q is not a long", raw)
		}
		return wiretype.Int64(l), nil
	default:
		return wiretype.Value{}, fmt.Errorf("command is not writable (type %s)", t)
	}
}

func init() {
	rootCmd.AddCommand(setCmd)
}
