package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/controlgate/controlgate/pkg/finding"
)

// ErrPolicyNotFound is returned when a policy file does not exist.
var ErrPolicyNotFound = errors.New("policy file not found")

// ErrInvalidPolicy is returned when a policy is malformed or fails
// validation. Validation runs at parse time so a bad policy is rejected
// before any evaluation starts.
var ErrInvalidPolicy = errors.New("invalid policy")

// SeverityPolicy configures one severity bucket.
type SeverityPolicy struct {
	// Maximum is the count threshold above which the bucket fails.
	// The comparison is inclusive: count <= maximum passes.
	Maximum int `yaml:"maximum"`

	// Exceptions lists identifiers (CVEs, rule IDs) or weakness codes
	// (CWEs) exempted from counting in this bucket.
	Exceptions []string `yaml:"exceptions"`
}

// Policy is the full configuration for one evaluation.
type Policy struct {
	// Name identifies the policy in reports.
	Name string `yaml:"name"`

	// Required decides what a failing evaluation reports: failure when
	// true, not-required when false.
	Required bool `yaml:"required"`

	// Severities maps a bucket to its threshold configuration. Buckets
	// absent from the map use the default {Maximum: 0}.
	Severities map[finding.Severity]SeverityPolicy `yaml:"severities"`

	// LocationExclusions lists path prefixes. A finding whose location
	// starts with any prefix is removed before counting. Matching is
	// literal and case-sensitive.
	LocationExclusions []string `yaml:"location_exclusions"`
}

// Default returns the policy applied to buckets the configuration does
// not mention: tolerate nothing, except nothing.
func Default() SeverityPolicy {
	return SeverityPolicy{Maximum: 0}
}

// SeverityPolicyFor returns the configuration for the given bucket,
// falling back to Default() for unmapped buckets. All four buckets
// conceptually exist even when the file omits them.
func (p *Policy) SeverityPolicyFor(sev finding.Severity) SeverityPolicy {
	if sp, ok := p.Severities[sev]; ok {
		return sp
	}
	return Default()
}

// ExceptionSet returns the bucket's exceptions as a lookup set.
func (p *Policy) ExceptionSet(sev finding.Severity) map[string]bool {
	exceptions := p.SeverityPolicyFor(sev).Exceptions
	if len(exceptions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exceptions))
	for _, e := range exceptions {
		set[e] = true
	}
	return set
}

// Load loads and parses a policy file from the given path.
// Returns ErrPolicyNotFound if the file doesn't exist.
// Returns ErrInvalidPolicy if the file is malformed or invalid.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, path)
		}
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates policy YAML data.
// Returns ErrInvalidPolicy if the data is malformed or invalid.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks structural invariants: recognized severity buckets,
// non-negative maxima, and no blank exception or exclusion entries.
// It fails fast so evaluation never sees a half-valid policy.
func (p *Policy) Validate() error {
	for sev, sp := range p.Severities {
		if !sev.IsValid() {
			return fmt.Errorf("%w: unknown severity bucket %q", ErrInvalidPolicy, sev)
		}
		if sp.Maximum < 0 {
			return fmt.Errorf("%w: severity %s has negative maximum %d",
				ErrInvalidPolicy, sev, sp.Maximum)
		}
		for i, e := range sp.Exceptions {
			if strings.TrimSpace(e) == "" {
				return fmt.Errorf("%w: severity %s exception %d is blank",
					ErrInvalidPolicy, sev, i)
			}
		}
	}
	for i, prefix := range p.LocationExclusions {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("%w: location exclusion %d is blank", ErrInvalidPolicy, i)
		}
	}
	return nil
}
