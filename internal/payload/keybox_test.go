package payload

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildKeybox renders a keybox document with the given chain lengths. A
// negative count omits that key entirely.
func buildKeybox(number string, privateKey bool, ecdsaCerts, rsaCerts int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n<AndroidAttestation>\n")
	if number != "" {
		fmt.Fprintf(&b, "<NumberOfKeyboxes>%s</NumberOfKeyboxes>\n", number)
	}
	b.WriteString(`<Keybox DeviceID="test">` + "\n")
	writeKey := func(alg string, n int) {
		if n < 0 {
			return
		}
		fmt.Fprintf(&b, "<Key algorithm=%q>\n", alg)
		if privateKey {
			b.WriteString(`<PrivateKey format="pem">key</PrivateKey>` + "\n")
		}
		fmt.Fprintf(&b, "<CertificateChain><NumberOfCertificates>%d</NumberOfCertificates>\n", n)
		for i := 0; i < n; i++ {
			b.WriteString(`<Certificate format="pem">cert</Certificate>` + "\n")
		}
		b.WriteString("</CertificateChain>\n</Key>\n")
	}
	writeKey("ecdsa", ecdsaCerts)
	writeKey("rsa", rsaCerts)
	b.WriteString("</Keybox>\n</AndroidAttestation>\n")
	return b.String()
}

func TestParseKeybox_FullDocument(t *testing.T) {
	s, err := ParseKeybox(buildKeybox("1", true, 3, 3))
	if err != nil {
		t.Fatalf("ParseKeybox: %v", err)
	}
	if s.NumberOfKeyboxes != 1 || !s.HasPrivateKey || !s.HasECDSAKey || !s.HasRSAKey {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.ECDSACertCount != 3 || s.RSACertCount != 3 || s.TotalCertCount != 6 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TypeLabel() != TypeBoth {
		t.Fatalf("TypeLabel = %q", s.TypeLabel())
	}
	if s.DisplayCertCount() != 3 {
		t.Fatalf("DisplayCertCount = %d", s.DisplayCertCount())
	}
	if !ValidateKeybox(buildKeybox("1", true, 3, 3), PolicyStrict) {
		t.Fatalf("expected strict validation to pass")
	}
}

func TestParseKeybox_NumberOfKeyboxes(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   int
	}{
		{"one", "1", 1},
		{"padded", "  2 \n", 2},
		{"missing", "", -1},
		{"non numeric", "one", -1},
		{"negative", "-5", -5},
		{"comment before", "<!-- count -->1", 1},
		{"comment inside", "1<!-- x -->2", 12},
		{"pi inside", "<?hint one?> 1 ", 1},
		{"child element", "<n>1</n>", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildKeybox(tt.number, true, 1, 1)
			s, err := ParseKeybox(doc)
			if err != nil {
				t.Fatalf("ParseKeybox: %v", err)
			}
			if s.NumberOfKeyboxes != tt.want {
				t.Fatalf("NumberOfKeyboxes = %d, want %d", s.NumberOfKeyboxes, tt.want)
			}
			if tt.want != 1 && ValidateKeybox(doc, PolicyLenient) {
				t.Fatalf("expected validation failure for %q", tt.number)
			}
		})
	}
}

func TestParseKeybox_DeclaredEncoding(t *testing.T) {
	body := strings.TrimPrefix(buildKeybox("1", true, 3, 3), `<?xml version="1.0"?>`)
	// "Gerät" in Latin-1.
	body = strings.Replace(body, `DeviceID="test"`, "DeviceID=\"Ger\xe4t\"", 1)
	for _, enc := range []string{"ISO-8859-1", "windows-1252", "UTF-8"} {
		doc := `<?xml version="1.0" encoding="` + enc + `"?>` + body
		if enc == "UTF-8" {
			doc = strings.Replace(doc, "\xe4", "ä", 1)
		}
		s, err := ParseKeybox(doc)
		if err != nil {
			t.Fatalf("%s: ParseKeybox: %v", enc, err)
		}
		if s.NumberOfKeyboxes != 1 || s.ECDSACertCount != 3 || s.RSACertCount != 3 {
			t.Fatalf("%s: unexpected summary %+v", enc, s)
		}
		if !ValidateKeybox(doc, PolicyStrict) {
			t.Fatalf("%s: expected strict validation to pass", enc)
		}
	}
	if _, err := ParseKeybox(`<?xml version="1.0" encoding="no-such-charset"?><A/>`); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for an unknown encoding, got %v", err)
	}
}

func TestParseKeybox_EmptyNumberTagKeepsScanning(t *testing.T) {
	doc := `<A><NumberOfKeyboxes/><Key algorithm="ecdsa"><Certificate/></Key></A>`
	s, err := ParseKeybox(doc)
	if err != nil {
		t.Fatalf("ParseKeybox: %v", err)
	}
	if s.NumberOfKeyboxes != -1 || !s.HasECDSAKey || s.ECDSACertCount != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestParseKeybox_AlgorithmContext(t *testing.T) {
	doc := `<A>
<Certificate/>
<Key algorithm="ECDSA"><Certificate/><Certificate/></Key>
<Certificate/>
<Key algorithm="ed25519"><Certificate/></Key>
<Key><Certificate/></Key>
<Key algorithm="Rsa"><Certificate/></Key>
</A>`
	s, err := ParseKeybox(doc)
	if err != nil {
		t.Fatalf("ParseKeybox: %v", err)
	}
	if s.ECDSACertCount != 2 || s.RSACertCount != 1 {
		t.Fatalf("per-algorithm counts = %d/%d", s.ECDSACertCount, s.RSACertCount)
	}
	if s.TotalCertCount != 7 {
		t.Fatalf("TotalCertCount = %d, want 7", s.TotalCertCount)
	}
	if !s.HasECDSAKey || !s.HasRSAKey {
		t.Fatalf("expected both algorithms: %+v", s)
	}
}

func TestParseKeybox_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"whitespace": "  \n ",
		"text only":  "not xml at all",
		"mismatched": "<A><B></A></B>",
		"unclosed":   "<A><Key algorithm=\"rsa\">",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := ParseKeybox(doc)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if s != emptyKeybox() {
				t.Fatalf("expected empty summary, got %+v", s)
			}
			if s.TypeLabel() != TypeUnknown || s.DisplayCertCount() != 0 {
				t.Fatalf("unexpected defaults: %q %d", s.TypeLabel(), s.DisplayCertCount())
			}
			if ValidateKeybox(doc, PolicyLenient) {
				t.Fatalf("malformed document must not validate")
			}
		})
	}
}

func TestTypeLabel(t *testing.T) {
	tests := []struct {
		ecdsa, rsa bool
		want       string
	}{
		{true, true, TypeBoth},
		{true, false, TypeECDSA},
		{false, true, TypeRSA},
		{false, false, TypeUnknown},
	}
	for _, tt := range tests {
		s := KeyboxSummary{HasECDSAKey: tt.ecdsa, HasRSAKey: tt.rsa, ECDSACertCount: 2, RSACertCount: 5}
		if got := s.TypeLabel(); got != tt.want {
			t.Fatalf("TypeLabel(%v,%v) = %q, want %q", tt.ecdsa, tt.rsa, got, tt.want)
		}
		want := 5
		if tt.ecdsa {
			want = 2
		}
		if got := s.DisplayCertCount(); got != want {
			t.Fatalf("DisplayCertCount(%v,%v) = %d, want %d", tt.ecdsa, tt.rsa, got, want)
		}
	}
}
