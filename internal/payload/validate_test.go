package payload

import "testing"

func TestValidateKeybox_Policies(t *testing.T) {
	for n := 0; n <= 5; n++ {
		doc := buildKeybox("1", true, n, n)
		if got, want := ValidateKeybox(doc, PolicyLenient), n >= 1; got != want {
			t.Errorf("lenient N=%d: got %v want %v", n, got, want)
		}
		if got, want := ValidateKeybox(doc, PolicyStrict), n == StrictChainLength; got != want {
			t.Errorf("strict N=%d: got %v want %v", n, got, want)
		}
	}
}

func TestValidateKeybox_StructuralChecks(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no private key", buildKeybox("1", false, 3, 3)},
		{"two keyboxes", buildKeybox("2", true, 3, 3)},
		{"ecdsa only", buildKeybox("1", true, 3, -1)},
		{"rsa only", buildKeybox("1", true, -1, 3)},
		{"uneven strict", buildKeybox("1", true, 3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name != "uneven strict" && ValidateKeybox(tt.doc, PolicyLenient) {
				t.Fatalf("expected lenient failure")
			}
			if ValidateKeybox(tt.doc, PolicyStrict) {
				t.Fatalf("expected strict failure")
			}
		})
	}
}

func TestValidateKeyboxReport_ListsFailures(t *testing.T) {
	r := ValidateKeyboxReport(buildKeybox("1", false, 3, -1), PolicyStrict)
	if r.OK() {
		t.Fatalf("expected failing report")
	}
	failed := map[string]bool{}
	for _, c := range r.Failed() {
		failed[c.ID] = true
	}
	for _, id := range []string{"check_private_key", "check_rsa_key", "check_rsa_certs"} {
		if !failed[id] {
			t.Errorf("expected %s to fail, failures: %v", id, failed)
		}
	}
	if failed["check_ecdsa_certs"] || failed["check_number_of_keyboxes"] {
		t.Errorf("unexpected failures: %v", failed)
	}

	r = ValidateKeyboxReport("", PolicyLenient)
	if len(r.Checks) != 1 || r.Checks[0].ID != "check_parse" || r.Checks[0].Passed {
		t.Fatalf("expected single failed parse check, got %+v", r.Checks)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("STRICT"); err != nil || p != PolicyStrict {
		t.Fatalf("ParsePolicy(STRICT) = %q, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyLenient {
		t.Fatalf("ParsePolicy(\"\") = %q, %v", p, err)
	}
	if _, err := ParsePolicy("exact"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestReport_EmptyIsNotOK(t *testing.T) {
	if (Report{}).OK() {
		t.Fatalf("empty report must not be OK")
	}
}

func TestValidateDispatch(t *testing.T) {
	if !Validate(Pif, `{"a":1}`, PolicyStrict) {
		t.Fatalf("pif dispatch failed")
	}
	if !Validate(Keybox, buildKeybox("1", true, 1, 1), PolicyLenient) {
		t.Fatalf("keybox dispatch failed")
	}
	if len(ValidateReport(Pif, `{}`, PolicyLenient).Failed()) != 1 {
		t.Fatalf("expected one failed pif check")
	}
}
