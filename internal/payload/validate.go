// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package payload

import (
	"fmt"
	"strings"
)

// Policy selects how many certificates each key chain must carry.
type Policy string

const (
	// PolicyStrict requires exactly three certificates per algorithm.
	PolicyStrict Policy = "strict"
	// PolicyLenient requires at least one certificate per algorithm.
	PolicyLenient Policy = "lenient"
)

// StrictChainLength is the certificate count demanded by PolicyStrict.
const StrictChainLength = 3

// ParsePolicy maps a configuration value to a Policy. The empty string maps
// to PolicyLenient.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict:
		return PolicyStrict, nil
	case PolicyLenient, "":
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown keybox policy %q", s)
	}
}

func (p Policy) chainOK(n int) bool {
	if p == PolicyStrict {
		return n == StrictChainLength
	}
	return n >= 1
}

// Check is one named validation step and its outcome.
type Check struct {
	// ID is the i18n message ID describing the check.
	ID     string
	Passed bool
	// Value is the observed count for counting checks, otherwise zero.
	Value int
}

// Report lists the checks run against a payload.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed. An empty report is not OK.
func (r Report) OK() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// ValidateKeybox reports whether doc is an acceptable keybox under policy.
// Parse failures count as invalid.
func ValidateKeybox(doc string, policy Policy) bool {
	return ValidateKeyboxReport(doc, policy).OK()
}

// ValidateKeyboxReport runs every keybox check and returns the outcomes. A
// document that does not parse yields a single failed parse check.
func ValidateKeyboxReport(doc string, policy Policy) Report {
	s, err := ParseKeybox(doc)
	if err != nil {
		return Report{Checks: []Check{{ID: "check_parse"}}}
	}
	return Report{Checks: []Check{
		{ID: "check_parse", Passed: true},
		{ID: "check_number_of_keyboxes", Passed: s.NumberOfKeyboxes == 1, Value: s.NumberOfKeyboxes},
		{ID: "check_private_key", Passed: s.HasPrivateKey},
		{ID: "check_ecdsa_key", Passed: s.HasECDSAKey},
		{ID: "check_rsa_key", Passed: s.HasRSAKey},
		{ID: "check_ecdsa_certs", Passed: policy.chainOK(s.ECDSACertCount), Value: s.ECDSACertCount},
		{ID: "check_rsa_certs", Passed: policy.chainOK(s.RSACertCount), Value: s.RSACertCount},
	}}
}

// Validate dispatches to the validator for k.
func Validate(k Kind, doc string, policy Policy) bool {
	if k == Pif {
		return ValidatePif(doc)
	}
	return ValidateKeybox(doc, policy)
}

// ValidateReport dispatches to the report builder for k.
func ValidateReport(k Kind, doc string, policy Policy) Report {
	if k == Pif {
		return ValidatePifReport(doc)
	}
	return ValidateKeyboxReport(doc, policy)
}
