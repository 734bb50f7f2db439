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
agac packs AGA textual assembly into the binary AGC container (spec §4.8,
§6): the magic header, global memory, event declarations and every
handler's dependency-annotated statement stream, ready for a runtime VM.
`, "\n", " ")

var Agac = cli.New(Description).
	WithArg(cli.NewArg("input", "The AGA source (.aga) file to pack").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The AGC output file (.agc); defaults to the input path with its extension swapped").
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
		output = strings.TrimSuffix(input, ".aga") + ".agc"
	}

	diag.Stage("agac", input).Info("packing aga -> agc")

	source, err := os.ReadFile(input)
	if err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: input}, err, "reading %s", input)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	out, err := pipeline.Default().Compile(input, string(source), "aga", "agc")
	if err != nil {
		fmt.Println(diag.Render(err))
		return diag.ClassOf(err).ExitCode()
	}

	if err := os.WriteFile(output, out, 0o644); err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: output}, err, "writing %s", output)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	diag.Stage("agac", input).WithField("output", output).Info("wrote agc")
	return 0
}

func main() { os.Exit(Agac.Run(os.Args, os.Stdout)) }
