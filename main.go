package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/xyproto/env/v2"

	"milan/pkg/asm"
	"milan/pkg/compiler"
	"milan/pkg/utils"
	"milan/pkg/vm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process: it returns the exit status instead of
// exiting. 0 is success, 1 a translation or run failure, 2 a usage error.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "milan: ", 0)

	fs := flag.NewFlagSet("milan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inPath := fs.String("in", "", "input Milan source file path")
	outPath := fs.String("out", "", "output bytecode file path (default: input with "+env.Str("MILAN_OUT_EXT", ".mvm")+" extension)")
	runProgram := fs.Bool("run", false, "run the generated bytecode on the stack machine")
	runBinPath := fs.String("run-bin", "", "run an existing bytecode file on the stack machine")
	trace := fs.Bool("trace", env.Bool("MILAN_TRACE"), "print the parser trace to stderr")
	maxSteps := fs.Int("max-steps", env.Int("MILAN_MAX_STEPS", 0), "abort a run after this many instructions (0: no limit)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *runProgram && *runBinPath != "" {
		logger.Println("use either -run or -run-bin, not both")
		return 2
	}

	translatedOutput := ""
	if *inPath != "" {
		output := *outPath
		if output == "" {
			output = utils.OutputPath(*inPath, env.Str("MILAN_OUT_EXT", ".mvm"))
		}
		n, err := translateFile(*inPath, output, *trace, stderr)
		if err != nil {
			logger.Printf("translation failed: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "translated %d instructions -> %s\n", n, output)
		translatedOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram {
		logger.Println("nothing to do: provide -in to translate, -run to run the translated output, or -run-bin <file> to run existing bytecode")
		fs.Usage()
		return 2
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if translatedOutput == "" {
			logger.Println("-run requires -in, or use -run-bin <file>")
			return 2
		}
		runTarget = translatedOutput
	default:
		return 0
	}

	if err := runBytecode(ctx, runTarget, *maxSteps, stdin, stdout, stderr); err != nil {
		logger.Printf("run failed for %q: %v", runTarget, err)
		return 1
	}
	return 0
}

// translateFile compiles inPath and writes its listing to outPath. The
// listing is only created once translation has succeeded.
func translateFile(inPath, outPath string, trace bool, stderr io.Writer) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return 0, err
	}

	var opts []compiler.Option
	if trace {
		opts = append(opts, compiler.WithTrace(stderr))
	}
	res, err := compiler.Compile(string(source), opts...)
	if err != nil {
		compiler.PrintDiagnostics(stderr, string(source), err, colorFor(stderr))
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	if err := asm.Write(f, res.Program.Code); err != nil {
		f.Close()
		return 0, err
	}
	return res.Program.Len(), f.Close()
}

func runBytecode(ctx context.Context, path string, maxSteps int, stdin io.Reader, stdout, stderr io.Writer) error {
	listing, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, err := asm.AssembleProgram(string(listing))
	if err != nil {
		return fmt.Errorf("assembly error: %w", err)
	}

	m := vm.NewMachine(prog)
	m.Input = stdin
	m.Output = stdout
	m.MaxSteps = maxSteps
	if f, ok := stdin.(*os.File); ok && utils.IsTerminal(int(f.Fd())) {
		m.Prompt = stderr
	}
	return m.Run(ctx)
}

func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && utils.UseColor(f)
}
