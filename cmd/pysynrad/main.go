// Command pysynrad runs the synchrotron radiation event generator against
// a JSON configuration file describing a machine lattice, beam and photon
// generation settings (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/portrain/pysynrad"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pysynrad", flag.ContinueOnError)
	template := fs.String("t", "", "a JSON string with template arguments for the config")
	fs.StringVar(template, "template", "", "alias of -t")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	positional := fs.Args()
	// Flags may also follow the config file: parse whatever trails it.
	if len(positional) > 1 {
		first := positional[0]
		if err := fs.Parse(positional[1:]); err != nil {
			return 2
		}
		positional = append([]string{first}, fs.Args()...)
	}
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pysynrad <config_file> [-t|--template <json>]")
		return 2
	}
	configPath := positional[0]

	cfg, err := pysynrad.Load(configPath, *template)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pysynrad: %v\n", err)
		return 1
	}

	gen, err := pysynrad.NewGenerator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pysynrad: %v\n", err)
		return 1
	}

	if err := gen.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "pysynrad: %v\n", err)
		gen.Terminate()
		return 1
	}
	defer gen.Terminate()

	if err := gen.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pysynrad: %v\n", err)
		return 1
	}

	return 0
}
