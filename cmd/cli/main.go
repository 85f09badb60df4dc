// Command controlgate evaluates classified security findings against
// threshold policies and reports an attestation per control.
package main

import (
	"fmt"
	"os"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/ui"
)

func main() {
	ui.AutoDetectColor()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "evaluate", "eval":
		runEvaluate()
	case "validate":
		runValidate()
	case "-v", "--version", "version":
		fmt.Printf("%s %s\n", defaults.ToolName, defaults.Version)
		os.Exit(0)
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s %s - policy gate for classified security findings

Usage:
  %s <command> [flags]

Commands:
  evaluate    Evaluate findings against a policy and attest each control
  validate    Validate a policy file without evaluating anything
  version     Print the version
  help        Print this help

Examples:
  controlgate evaluate -policy policy.yaml sast.scan=findings.json
  controlgate evaluate -policy policy.yaml -output jsonl results/*.json
  controlgate validate -policy policy.yaml

Exit codes:
  0  pass             4  invalid configuration
  1  fail             5  malformed findings
  2  not required     6  interrupted
  3  not found

Run "%s <command> -h" for command flags.
`, defaults.ToolName, defaults.Version, defaults.ToolName, defaults.ToolName)
}
