// Command milanc translates Milan files and dumps every stage: tokens,
// bytecode listing and variable table. Files are translated concurrently.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/xyproto/env/v2"
	"golang.org/x/sync/errgroup"

	"milan/pkg/asm"
	"milan/pkg/compiler"
	"milan/pkg/utils"
)

const testSource = `begin
	x := 10;
	y := 20;
	write(x + y)
end
`

func main() {
	log.SetPrefix("milanc: ")
	log.SetFlags(0)

	showTokens := flag.Bool("tokens", false, "dump the token stream")
	showVars := flag.Bool("vars", true, "dump the variable table")
	jobs := flag.Int("jobs", env.Int("MILAN_JOBS", runtime.NumCPU()), "files translated in parallel")
	flag.Parse()

	cfg := config{tokens: *showTokens, vars: *showVars, color: utils.UseColor(os.Stdout)}

	paths := flag.Args()
	if len(paths) == 0 {
		report := dump(cfg, "<builtin>", testSource)
		os.Stdout.Write(report.out)
		if report.failed {
			os.Exit(1)
		}
		return
	}

	reports, err := translateAll(cfg, paths, *jobs)
	if err != nil {
		log.Fatal(err)
	}
	failed := false
	for _, r := range reports {
		os.Stdout.Write(r.out)
		failed = failed || r.failed
	}
	if failed {
		os.Exit(1)
	}
}

type config struct {
	tokens bool
	vars   bool
	color  bool
}

type report struct {
	out    []byte
	failed bool
}

// translateAll dumps each file on its own goroutine, at most jobs at a
// time. Reports come back in the order of paths.
func translateAll(cfg config, paths []string, jobs int) ([]report, error) {
	reports := make([]report, len(paths))

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			reports[i] = dump(cfg, path, string(src))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func dump(cfg config, name, src string) report {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "== %s ==\n", name)

	if cfg.tokens {
		tokens := compiler.Lex(src)
		fmt.Fprintf(&buf, "Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Fprintln(&buf, " ", tok)
		}
		fmt.Fprintln(&buf)
	}

	res, err := compiler.Compile(src)
	if err != nil {
		compiler.PrintDiagnostics(&buf, src, err, cfg.color)
		fmt.Fprintln(&buf)
		return report{out: buf.Bytes(), failed: true}
	}

	fmt.Fprintln(&buf, "Bytecode")
	asm.Write(&buf, res.Program.Code)
	fmt.Fprintln(&buf)
	if cfg.vars {
		fmt.Fprint(&buf, res.Vars)
		fmt.Fprintln(&buf)
	}
	return report{out: buf.Bytes()}
}
