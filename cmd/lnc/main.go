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
lnc compiles a single LN source file into its AMM intermediate text
(spec §4.6): imports are resolved against @std/ and sibling files, every
declaration is type-checked and dispatch-resolved, and the result is a
flattened, already-disambiguated AMM module ready for ammc.
`, "\n", " ")

var Lnc = cli.New(Description).
	WithArg(cli.NewArg("input", "The LN source (.ln) file to compile").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The AMM output file (.amm); defaults to the input path with its extension swapped").
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
		output = strings.TrimSuffix(input, ".ln") + ".amm"
	}

	diag.Stage("lnc", input).Info("compiling ln -> amm")

	source, err := os.ReadFile(input)
	if err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: input}, err, "reading %s", input)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	out, err := pipeline.Default().Compile(input, string(source), "ln", "amm")
	if err != nil {
		fmt.Println(diag.Render(err))
		return diag.ClassOf(err).ExitCode()
	}

	if err := os.WriteFile(output, out, 0o644); err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: output}, err, "writing %s", output)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	diag.Stage("lnc", input).WithField("output", output).Info("wrote amm")
	return 0
}

func main() { os.Exit(Lnc.Run(os.Args, os.Stdout)) }
