package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/output/exitcode"
	"github.com/controlgate/controlgate/pkg/policy"
)

func runValidate() {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	policyPath := flags.String("policy", "", "Policy YAML file (required)")
	verbose := flags.Bool("verbose", false, "Print the resolved policy")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s validate -policy <file>\n\nFlags:\n", defaults.ToolName)
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[2:])

	if *policyPath == "" {
		fmt.Fprintln(os.Stderr, "validate: -policy is required")
		os.Exit(int(exitcode.Configuration))
	}

	pol, err := policy.Load(*policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(int(exitcode.Configuration))
	}

	fmt.Printf("policy %q is valid\n", pol.Name)
	if *verbose {
		printPolicy(pol)
	}
	os.Exit(int(exitcode.Pass))
}

func printPolicy(pol *policy.Policy) {
	fmt.Printf("  required: %v\n", pol.Required)
	for _, sev := range finding.Severities {
		sp := pol.SeverityPolicyFor(sev)
		fmt.Printf("  %-8s maximum=%d exceptions=%d\n", sev, sp.Maximum, len(sp.Exceptions))
	}
	if len(pol.LocationExclusions) > 0 {
		fmt.Printf("  location exclusions: %d\n", len(pol.LocationExclusions))
	}
}
