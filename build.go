//go:build ignore

// build.go - chainviz build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, cli, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "chainviz"

var (
	distDir = "dist"

	// Executables by cmd directory
	executables = map[string]string{
		"web":      "chainviz-web",
		"chainviz": "chainviz",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		for _, dir := range []string{"web", "chainviz"} {
			if err = buildExecutable(dir, *verbose); err != nil {
				break
			}
		}
	case "web":
		err = buildExecutable("web", *verbose)
	case "cli":
		err = buildExecutable("chainviz", *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        chainviz - Build System            " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// buildExecutable builds ./cmd/<dir> into dist with version ldflags
func buildExecutable(dir string, verbose bool) error {
	name := executables[dir]
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	output := filepath.Join(distDir, name)
	printInfo(fmt.Sprintf("Building %s -> %s", dir, output))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", output}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/"+dir)
	return runCommand(verbose, "go", args...)
}

// ldflags stamps build time and commit into pkg/contracts
func ldflags() string {
	pkg := module + "/pkg/contracts"
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", pkg, strings.TrimSpace(string(commit))))
	}
	return strings.Join(flags, " ")
}

func runTests(verbose bool) error {
	printInfo("Running tests...")
	args := []string{"test", "-race", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	return runCommand(true, "go", args...)
}

func runCommand(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if verbose {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all    Build the web server and the CLI (default)")
	fmt.Println("  web    Build cmd/web")
	fmt.Println("  cli    Build cmd/chainviz")
	fmt.Println("  test   Run all tests with the race detector")
	fmt.Println("  clean  Remove the dist directory")
}
