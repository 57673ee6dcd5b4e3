// Command solvecheck drives the constraint solver (internal/solver)
// directly against a handful of hand-built constraint trees. There is
// no surface parser in this repository — the AST, elaborator, and
// module loader are external collaborators (spec.md §1) — so this CLI
// plays their role well enough to demonstrate and smoke-test the
// solver end to end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag  = flag.Bool("version", false, "print version information")
		helpFlag     = flag.Bool("help", false, "show help")
		scenarioFlag = flag.String("scenario", "", "run a single named scenario (default: run all)")
		configFlag   = flag.String("config", "", "path to a solver config YAML file")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag {
		printHelp()
		return
	}

	if *scenarioFlag != "" {
		sc, ok := findScenario(*scenarioFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: unknown scenario %q\n", red("Error"), *scenarioFlag)
			os.Exit(1)
		}
		if !runScenario(sc, *configFlag) {
			os.Exit(1)
		}
		return
	}

	failed := 0
	for _, sc := range scenarios {
		if !runScenario(sc, *configFlag) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("\n%s: %d of %d scenarios failed\n", red("FAIL"), failed, len(scenarios))
		os.Exit(1)
	}
	fmt.Printf("\n%s: all %d scenarios passed\n", green("PASS"), len(scenarios))
}

func findScenario(name string) (scenario, bool) {
	for _, sc := range scenarios {
		if sc.name == name {
			return sc, true
		}
	}
	return scenario{}, false
}

func runScenario(sc scenario, configPath string) bool {
	fmt.Printf("%s %s\n", cyan("=>"), bold(sc.name))
	fmt.Printf("   %s\n", sc.describe)

	ok, summary := sc.run(configPath)
	if ok {
		fmt.Printf("   %s %s\n\n", green("ok"), summary)
	} else {
		fmt.Printf("   %s %s\n\n", red("FAILED"), summary)
	}
	return ok
}

func printVersion() {
	fmt.Printf("solvecheck %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("solvecheck - constraint-solver scenario runner"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  solvecheck [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Printf("  %s             run version\n", cyan("-version"))
	fmt.Printf("  %s         run a single scenario by name\n", cyan("-scenario"))
	fmt.Printf("  %s           load a solver config YAML file\n", cyan("-config"))
	fmt.Println()
	fmt.Println("Scenarios:")
	for _, sc := range scenarios {
		fmt.Printf("  %-10s %s\n", yellow(sc.name), sc.describe)
	}
}
