package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/pipeline"
)

var Description = strings.ReplaceAll(`
ammc lowers a single AMM module into AGA textual assembly (spec §4.7): it
lays out global memory, assigns event ids, extracts every closure (and
plain function) into its own synthetic handler, and numbers every
statement with its dependency set.
`, "\n", " ")

var Ammc = cli.New(Description).
	WithArg(cli.NewArg("input", "The AMM source (.amm) file to lower").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The AGA output file (.aga); defaults to the input path with its extension swapped").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Println("ERROR: missing input file, use --help")
		return diag.ClassParse.ExitCode()
	}
	input := args[0]
	output := options["output"]
	if output == "" {
		output = strings.TrimSuffix(input, ".amm") + ".aga"
	}

	diag.Stage("ammc", input).Info("compiling amm -> aga")

	source, err := os.ReadFile(input)
	if err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: input}, err, "reading %s", input)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	out, err := pipeline.Default().Compile(input, string(source), "amm", "aga")
	if err != nil {
		fmt.Println(diag.Render(err))
		return diag.ClassOf(err).ExitCode()
	}

	if err := os.WriteFile(output, out, 0o644); err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: output}, err, "writing %s", output)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	diag.Stage("ammc", input).WithField("output", output).Info("wrote aga")
	return 0
}

func main() { os.Exit(Ammc.Run(os.Args, os.Stdout)) }
