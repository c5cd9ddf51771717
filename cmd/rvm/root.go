package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/restregular/rvm/interp"
)

// flags holds every CLI option spec.md §6.1 names. cobra/pflag shorthands
// are single-rune only, so the spec's two-letter short forms (-vc, -ti,
// -rwd, -pcl, -or, -clr, -db) are registered as plain long-flag aliases
// instead of true shorthands; -h, -v, -r, -c, -d keep their real shorthand.
type flags struct {
	target         string
	archive        string
	compLevel      string
	helpOption     string
	showVersion    bool
	vsCheck        bool
	run            bool
	comp           bool
	debug          bool
	timeInfo       bool
	workDirFlag    bool
	precompLink    bool
	precompLinkDir string
	outputRedirect string
	colorful       bool
}

// Execute builds and runs the root command, returning the process exit
// code (spec.md §6.1's per-flag Exit column).
func Execute() int {
	f := &flags{compLevel: "release", outputRedirect: "console"}
	code := 0

	root := &cobra.Command{
		Use:           "rvm",
		Short:         "rvm runs and compiles RA programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dispatch(cmd, f)
			code = c
			return err
		},
	}

	root.Flags().StringVarP(&f.target, "target", "t", "", "RA or RSI source file")
	root.Flags().StringVarP(&f.archive, "archive", "a", "", "RSI output path for --comp")
	root.Flags().StringVar(&f.compLevel, "comp-level", f.compLevel, "serialization profile: debug|testing|release|minified")
	root.Flags().StringVar(&f.helpOption, "help-option", "", "print the description of one flag, then exit")
	root.Flags().BoolVarP(&f.showVersion, "version", "v", false, "print version banner, then exit")
	root.Flags().BoolVar(&f.vsCheck, "vs-check", false, "read the RSI header from --target and print version info")
	root.Flags().BoolVar(&f.vsCheck, "vc", false, "alias of --vs-check")
	root.Flags().BoolVarP(&f.run, "run", "r", false, "execute --target")
	root.Flags().BoolVarP(&f.comp, "comp", "c", false, "parse --target and write RSI to --archive")
	root.Flags().BoolVarP(&f.debug, "debug", "d", false, "enable interactive stepping (requires --run)")
	root.Flags().BoolVar(&f.debug, "db", false, "alias of --debug")
	root.Flags().BoolVar(&f.timeInfo, "time-info", false, "print a wall-clock summary on exit")
	root.Flags().BoolVar(&f.timeInfo, "ti", false, "alias of --time-info")
	root.Flags().BoolVar(&f.workDirFlag, "rvm-work-directory", false, "use the rvm binary's own directory as the working directory")
	root.Flags().BoolVar(&f.workDirFlag, "rwd", false, "alias of --rvm-work-directory")
	root.Flags().BoolVar(&f.precompLink, "precomp-link", false, "precompile every file in --precomp-link-dir")
	root.Flags().BoolVar(&f.precompLink, "pcl", false, "alias of --precomp-link")
	root.Flags().StringVar(&f.precompLinkDir, "precomp-link-dir", "", "directory of RA files for --precomp-link")
	root.Flags().StringVar(&f.outputRedirect, "output-redirect", f.outputRedirect, "redirect VM stdout to PATH, or \"console\"")
	root.Flags().StringVar(&f.outputRedirect, "or", f.outputRedirect, "alias of --output-redirect")
	root.Flags().BoolVar(&f.colorful, "enable-colorful-output", false, "toggle ANSI-colored error/trace output")
	root.Flags().BoolVar(&f.colorful, "clr", false, "alias of --enable-colorful-output")

	root.MarkFlagsMutuallyExclusive("run", "comp", "vs-check", "version")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

func dispatch(cmd *cobra.Command, f *flags) (int, error) {
	if f.helpOption != "" {
		fl := cmd.Flags().Lookup(f.helpOption)
		if fl == nil {
			return 1, fmt.Errorf("no such option: %s", f.helpOption)
		}
		fmt.Printf("--%s: %s\n", fl.Name, fl.Usage)
		return 0, nil
	}

	if f.showVersion {
		fmt.Printf("rvm %s\n", interp.EngineVersion)
		return 0, nil
	}

	if f.precompLink && f.precompLinkDir == "" {
		return 1, fmt.Errorf("--precomp-link requires --precomp-link-dir")
	}

	if f.vsCheck {
		return runVsCheck(f)
	}

	if f.comp {
		return runComp(f)
	}

	if f.run {
		return runProgram(f)
	}

	// --precomp-link without --run/--comp batch-precompiles the directory.
	if f.precompLink {
		return runPrecompLink(f)
	}

	return 0, cmd.Help()
}

func workDir(f *flags) (string, error) {
	if !f.workDirFlag {
		return "", nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func runVsCheck(f *flags) (int, error) {
	if f.target == "" {
		return 1, fmt.Errorf("--vs-check requires --target")
	}
	file, err := os.Open(f.target)
	if err != nil {
		return 1, err
	}
	defer file.Close()
	hdr, err := interp.PeekRSIHeader(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corrupted RSI header:", err)
		return 1, nil
	}
	vc := interp.CheckRSIVersion(hdr)
	fmt.Println(vc.Message)
	if !vc.Compatible {
		return 1, nil
	}
	return 0, nil
}

func newVM(f *flags) (*interp.VM, *os.File, error) {
	wd, err := workDir(f)
	if err != nil {
		return nil, nil, err
	}

	var stdout io.Writer = os.Stdout
	var outFile *os.File
	if f.outputRedirect != "" && f.outputRedirect != "console" {
		outFile, err = os.Create(f.outputRedirect)
		if err != nil {
			return nil, nil, err
		}
		stdout = outFile
	}

	profile, err := interp.ParseProfile(f.compLevel)
	if err != nil {
		return nil, nil, err
	}

	opts := interp.Options{
		Stdout:  stdout,
		WorkDir: wd,
		Profile: profile,
		Debug:   f.debug,
		Color:   f.colorful,
	}
	if f.precompLink {
		opts.PrecompLinkDir = f.precompLinkDir
	}
	return interp.New(opts), outFile, nil
}

func runComp(f *flags) (int, error) {
	if f.target == "" || f.archive == "" {
		return 1, fmt.Errorf("--comp requires --target and --archive")
	}
	profile, err := interp.ParseProfile(f.compLevel)
	if err != nil {
		return 1, err
	}
	vm, outFile, err := newVM(f)
	if err != nil {
		return 1, err
	}
	if outFile != nil {
		defer outFile.Close()
	}

	src, err := os.ReadFile(f.target)
	if err != nil {
		return 1, err
	}
	root, perr := vm.ParseSource(string(src), f.target)
	if perr != nil {
		return 1, perr
	}

	out, err := os.Create(f.archive)
	if err != nil {
		return 1, err
	}
	defer out.Close()
	if err := vm.WriteRSI(root, profile, nil, out); err != nil {
		return 1, err
	}
	return 0, nil
}

func runPrecompLink(f *flags) (int, error) {
	if f.precompLinkDir == "" {
		return 1, fmt.Errorf("--precomp-link requires --precomp-link-dir")
	}
	entries, err := os.ReadDir(f.precompLinkDir)
	if err != nil {
		return 1, err
	}
	vm, outFile, err := newVM(f)
	if err != nil {
		return 1, err
	}
	if outFile != nil {
		defer outFile.Close()
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".ra") {
			paths = append(paths, filepath.Join(f.precompLinkDir, e.Name()))
		}
	}
	if herr := vm.PrecompileLink(paths); herr != nil {
		return 1, herr
	}
	fmt.Printf("precompiled %d file(s) from %s\n", len(paths), f.precompLinkDir)
	return 0, nil
}

func runProgram(f *flags) (int, error) {
	if f.target == "" {
		return 1, fmt.Errorf("--run requires --target")
	}
	vm, outFile, err := newVM(f)
	if err != nil {
		return 1, err
	}
	if outFile != nil {
		defer outFile.Close()
	}

	if f.debug {
		dbg, derr := interp.NewDebugger(vm)
		if derr != nil {
			return 1, derr
		}
		vm.AttachDebugger(dbg)
	}

	root, extensions, err := loadTarget(vm, f.target)
	if err != nil {
		return 1, err
	}
	if len(extensions) > 0 {
		if herr := vm.ResolveExtensions(extensions); herr != nil {
			fmt.Fprintln(os.Stderr, vm.FormatError(herr))
			return 1, nil
		}
	}

	start := time.Now()
	status, rerr := vm.Execute(root)
	elapsed := time.Since(start)

	if f.timeInfo {
		fmt.Printf("elapsed: %s\n", elapsed)
	}

	if rerr != nil {
		rvmErr, ok := rerr.(*interp.RVMError)
		if ok {
			fmt.Fprintln(os.Stderr, vm.FormatError(rvmErr))
		} else {
			fmt.Fprintln(os.Stderr, rerr)
		}
		return 1, nil
	}
	_ = status

	if iv, ok := vm.Result().(interp.IntValue); ok {
		code := int(iv) % 256
		if code < 0 {
			code += 256
		}
		return code, nil
	}
	return 0, nil
}

func loadTarget(vm *interp.VM, path string) (*interp.InsSet, []string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, ".rsi") {
		root, extensions, derr := vm.ReadRSI(bytes.NewReader(src))
		if derr != nil {
			return nil, nil, derr
		}
		return root, extensions, nil
	}
	root, perr := vm.ParseSource(string(src), path)
	if perr != nil {
		return nil, nil, perr
	}
	return root, nil, nil
}
