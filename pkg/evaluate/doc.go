// Package evaluate implements the control evaluation engine: it takes an
// immutable set of classified findings and an immutable policy and derives
// one of four attestation states (pass, fail, not-required, not-found).
//
// Data flows strictly downstream through the pipeline:
//
//	findings → exclude by location → exclude by exception →
//	count per bucket → threshold compare → requirement gate → state
//
// No stage feeds back upstream. Every function in this package is pure:
// no I/O, no shared mutable state, no retained references to inputs.
// Concurrent evaluations need no synchronization.
//
// # Usage
//
//	res := evaluate.Run(findings, p)
//	if res.State == evaluate.StateFail {
//	    for _, f := range res.Violating {
//	        fmt.Println(f.Identifier)
//	    }
//	}
package evaluate
