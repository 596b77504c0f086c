package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/interop"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Path to script file to evaluate")
		expr        = flag.String("e", "", "Expression to evaluate")
		drain       = flag.Bool("drain", true, "Drain the event loop after evaluation")
		verbose     = flag.Bool("v", false, "Verbose bridge logging")
		interactive = flag.Bool("i", false, "Interactive REPL with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(*verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *scriptFile == "" && *expr == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -script <file.js> [-e expr] [-v]")
		fmt.Fprintln(os.Stderr, "       run -e 'expression'")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive REPL)")
		os.Exit(1)
	}

	if err := run(*scriptFile, *expr, *drain, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scriptFile, expr string, drain, verbose bool) error {
	var opts []interop.Option
	if verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
		opts = append(opts, interop.WithLogger(log))
	}

	bridge, err := interop.New(opts...)
	if err != nil {
		return fmt.Errorf("install bridge: %w", err)
	}
	defer bridge.Teardown()

	if scriptFile != "" {
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		v, err := bridge.Engine().EvaluateNamed(scriptFile, string(data))
		if err != nil {
			return err
		}
		fmt.Println(v.String())
		v.Release()
	}

	if expr != "" {
		v, err := bridge.EvaluateScript(expr)
		if err != nil {
			return err
		}
		fmt.Println(v.String())
		v.Release()
	}

	if drain {
		if err := bridge.DrainEventLoop(); err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	}
	return nil
}
