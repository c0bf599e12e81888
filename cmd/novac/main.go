// Command novac drives the HIR generator end to end (§6 [EXPANDED]
// C11): it loads one or more already-parsed ASTs (there being no
// lexer/parser in scope, from the sample registry in modules.go),
// compiles them concurrently, prints any diagnostics, and optionally
// emits a Markdown or HTML HIR dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nova-lang/novac/gen"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/config"
	"github.com/nova-lang/novac/internal/diag"
	"github.com/nova-lang/novac/internal/dump"
)

var (
	debug      = flag.Bool("debug", false, "log each module's compilation start/finish to stderr")
	dumpFormat = flag.String("dump", "", "emit a HIR report per module: \"markdown\" or \"html\"")
	workers    = flag.Int("workers", 4, "worker pool size for concurrent module compilation")
	configPath = flag.String("config", "", "path to a nova.json project config")
)

const compilerVersion = "v0.1.0"

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "novac:", err)
		os.Exit(1)
	}
}

func run(names []string) error {
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if !cfg.Satisfies(compilerVersion) {
			return fmt.Errorf("project requires compilerVersion %s, this build is %s", cfg.CompilerVersion, compilerVersion)
		}
		if *dumpFormat == "" {
			*dumpFormat = cfg.DumpFormat
		}
	}

	if len(names) == 0 {
		names = sampleNames()
	}
	for _, name := range names {
		if _, ok := sampleModules[name]; !ok {
			return fmt.Errorf("no such sample module %q (have: %v)", name, sampleNames())
		}
	}

	results, err := compileAll(names)
	if err != nil {
		return err
	}

	hadErrors := false
	for _, r := range results {
		if r.diags.HasErrors() {
			hadErrors = true
			for _, d := range r.diags.Items() {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.name, d)
			}
		}
		for _, e := range r.sanityErrs {
			hadErrors = true
			fmt.Fprintf(os.Stderr, "%s: sanity: %v\n", r.name, e)
		}
		if *dumpFormat != "" && r.module != nil {
			out, err := renderDump(r.module)
			if err != nil {
				return err
			}
			fmt.Println(out)
		}
	}
	if hadErrors {
		return fmt.Errorf("compilation finished with diagnostics")
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return config.Load(f)
}

// moduleResult holds one compiled sample's output for the driver to
// report after every worker has finished.
type moduleResult struct {
	name       string
	module     *hir.Module
	diags      *diag.List
	sanityErrs []error
}

// compileAll runs gen.Run over every named sample concurrently using a
// bounded ants pool, one fresh *gen.HIRGen per module (§5 [EXPANDED]).
// A Fatal diagnostic from one module is recovered and reported without
// aborting the others.
func compileAll(names []string) ([]*moduleResult, error) {
	p, err := ants.NewPool(*workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer p.Release()

	results := make([]*moduleResult, len(names))
	mutex := new(sync.Mutex)
	wg := sync.WaitGroup{}
	group, ctx := errgroup.WithContext(context.Background())

	wg.Add(len(names))
	for i, name := range names {
		i, name := i, name
		errSubmit := p.Submit(func() {
			group.Go(func() error {
				defer wg.Done()
				r := compileOne(ctx, name)
				mutex.Lock()
				results[i] = r
				mutex.Unlock()
				return nil
			})
		})
		if errSubmit != nil {
			return nil, fmt.Errorf("submit %q: %w", name, errSubmit)
		}
	}
	wg.Wait()
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// compileOne lowers one sample module and runs its post-build sanity
// checks, recovering a Fatal diagnostic (§7) into a reported error
// rather than letting it escape the worker.
func compileOne(ctx context.Context, name string) (result *moduleResult) {
	result = &moduleResult{name: name, diags: &diag.List{}}
	if *debug {
		log.Printf("novac: compiling %q", name)
	}

	defer func() {
		if r := recover(); r != nil {
			if err := diag.Recover(r); err != nil {
				result.sanityErrs = append(result.sanityErrs, err)
			}
		}
		if *debug {
			log.Printf("novac: finished %q", name)
		}
	}()

	program := sampleModules[name]()
	module, diags := gen.Run(name, program)
	result.module = module
	result.diags = diags
	result.sanityErrs = checkModuleConcurrently(ctx, module)
	return result
}

// checkModuleConcurrently runs CheckFunction over every local function
// of m concurrently via errgroup, aggregating every error rather than
// failing fast on the first one (§5 [EXPANDED], §8 invariants 1/3/6).
func checkModuleConcurrently(ctx context.Context, m *hir.Module) []error {
	var mu sync.Mutex
	var errs []error
	group, _ := errgroup.WithContext(ctx)
	for _, fn := range m.Functions {
		fn := fn
		if fn.Linkage == hir.LinkageExternal {
			continue
		}
		group.Go(func() error {
			fnErrs := hir.CheckFunction(fn)
			if len(fnErrs) == 0 {
				return nil
			}
			mu.Lock()
			errs = append(errs, fnErrs...)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return errs
}

func renderDump(m *hir.Module) (string, error) {
	switch *dumpFormat {
	case "markdown", "":
		return dump.Markdown(m), nil
	case "html":
		return dump.HTML(m)
	default:
		return "", fmt.Errorf("unknown -dump format %q (want \"markdown\" or \"html\")", *dumpFormat)
	}
}
