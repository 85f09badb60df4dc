// Package policy defines the configuration for one control evaluation:
// per-severity thresholds and exception lists, path exclusions, and the
// required flag that decides whether a failing control is reported as a
// failure or downgraded to not-required.
//
// # Policy File Format
//
// Policy files are YAML documents with the following structure:
//
//	name: "sast-gate"
//	required: true
//
//	severities:
//	  critical:
//	    maximum: 0
//	    exceptions:
//	      - CWE-89          # accepted risk, tracked in ticket SEC-412
//	  high:
//	    maximum: 3
//	  medium:
//	    maximum: 10
//
//	location_exclusions:
//	  - "test/"
//	  - "vendor/"
//
// Severity buckets absent from the file default to maximum 0 with no
// exceptions: a bucket the policy does not mention tolerates nothing.
//
// # Usage
//
//	p, err := policy.Load("policy.yaml")
//	if err != nil {
//	    return err
//	}
//	res := evaluate.Run(findings, p)
//
// A Policy is immutable after Parse/Load and safe for concurrent use.
package policy
