package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/go-irvm/irvm/config"
	"github.com/go-irvm/irvm/internal/ioutil"
	"github.com/go-irvm/irvm/ir"
	"github.com/go-irvm/irvm/vm"
)

var (
	fileName   string
	configPath string
	debug      bool
	stats      bool
	dump       bool
)

// atExit prints the diagnostic (if any) and always reports the executed
// instruction count as a final stderr line, per the interpreter's external
// contract: `instrCnt: <N>` regardless of whether the run succeeded.
func atExit(x *vm.Executor, err error) {
	var count int64
	if x != nil {
		count = x.InstructionCount()
	}
	if err == nil {
		fmt.Fprintf(os.Stderr, "instrCnt: %d\n", count)
		return
	}
	if debug {
		fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
	}
	fmt.Fprintf(os.Stderr, "instrCnt: %d\n", count)
	os.Exit(1)
}

func main() {
	var err error
	var x *vm.Executor

	defer func() { atExit(x, err) }()

	flag.StringVar(&fileName, "f", "", "load IR program from `filename`")
	flag.StringVar(&fileName, "file", "", "load IR program from `filename` (same as -f)")
	flag.StringVar(&configPath, "config", "irvm.toml", "load runtime limits from `filename`")
	flag.BoolVar(&debug, "debug", false, "print a full error stack trace on failure")
	flag.BoolVar(&stats, "stats", false, "print elapsed time after a successful run")
	flag.BoolVar(&dump, "dump", false, "print a disassembly listing of the linked program and exit")
	flag.Parse()

	if fileName == "" {
		err = errors.New("missing required -f/-file flag")
		return
	}

	src, readErr := os.ReadFile(fileName)
	if readErr != nil {
		err = errors.Wrapf(readErr, "reading %s", fileName)
		return
	}

	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		err = cfgErr
		return
	}

	prog, parseErr := ir.Parse(string(src))
	if parseErr != nil {
		err = errors.Wrap(parseErr, "parse error")
		return
	}

	linked, linkErr := vm.Link(prog)
	if linkErr != nil {
		err = linkErr
		return
	}

	if dump {
		err = vm.Dump(os.Stdout, linked)
		return
	}

	stdout := bufio.NewWriter(ioutil.NewErrWriter(os.Stdout))
	defer stdout.Flush()

	opts := []vm.Option{
		vm.Input(bufio.NewReader(os.Stdin)),
		vm.Output(stdout),
		vm.MaxInstructions(cfg.Execution.MaxInstructions),
		vm.MaxStackDepth(cfg.Execution.StackDepth),
	}
	if cfg.Trace.Enabled {
		opts = append(opts, vm.Trace(os.Stderr))
	}

	x, err = vm.New(linked, opts...)
	if err != nil {
		return
	}

	start := time.Now()
	err = x.Run()
	if stats && err == nil {
		fmt.Fprintf(os.Stderr, "elapsed: %v\n", time.Since(start))
	}
}
