// alnc is the pipeline-aware front door (spec §6): given a source file of
// any stage extension and a requested target extension, it routes through
// whichever of lnc/ammc/agac's underlying converters the Pipeline finds a
// chain for, so a caller never has to invoke the single-stage binaries by
// hand for a multi-stage compile (e.g. `alnc hello.ln --to agc`).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/teris-io/cli"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/pipeline"
)

var Description = strings.ReplaceAll(`
alnc compiles a source file through the minimal chain of stages the
Pipeline (spec §4.9) finds between its extension and the requested target:
ln -> amm -> aga -> agc. An optional alanc.yaml in the working directory
supplies defaults for --to and --output when they're omitted.
`, "\n", " ")

var Alnc = cli.New(Description).
	WithArg(cli.NewArg("input", "The source file to compile (.ln, .amm or .aga)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("to", "The target extension: amm, aga or agc").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The output file; defaults to the input path with its extension swapped").
		WithType(cli.TypeString)).
	WithAction(Handler)

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName("alanc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetDefault("to", "agc")
	_ = v.ReadInConfig() // no alanc.yaml is the common case, not an error
	return v
}

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Println("ERROR: missing input file, use --help")
		return diag.ClassParse.ExitCode()
	}
	input := args[0]

	cfg := loadConfig()
	toExt := options["to"]
	if toExt == "" {
		toExt = cfg.GetString("to")
	}
	fromExt := strings.TrimPrefix(filepath.Ext(input), ".")

	output := options["output"]
	if output == "" {
		output = cfg.GetString("output")
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + toExt
	}

	diag.Stage("alnc", input).WithField("to", toExt).Info("routing pipeline compile")

	out, err := pipeline.Default().CompileFile(input, fromExt, toExt)
	if err != nil {
		fmt.Println(diag.Render(err))
		return diag.ClassOf(err).ExitCode()
	}

	if err := os.WriteFile(output, out, 0o644); err != nil {
		wrapped := diag.Wrap(diag.ClassIO, diag.Position{File: output}, err, "writing %s", output)
		fmt.Println(diag.Render(wrapped))
		return diag.ClassIO.ExitCode()
	}

	diag.Stage("alnc", input).WithField("output", output).Info("wrote output")
	return 0
}

func main() { os.Exit(Alnc.Run(os.Args, os.Stdout)) }
