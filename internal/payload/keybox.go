// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package payload

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Tag names recognized by the keybox scanner. Everything else is skipped.
const (
	tagNumberOfKeyboxes = "NumberOfKeyboxes"
	tagKey              = "Key"
	tagPrivateKey       = "PrivateKey"
	tagCertificate      = "Certificate"
)

// Type labels shown in keybox summaries.
const (
	TypeBoth    = "RSA + ECDSA"
	TypeECDSA   = "ECDSA"
	TypeRSA     = "RSA"
	TypeUnknown = "Unknown"
)

type algorithm int

const (
	algNone algorithm = iota
	algECDSA
	algRSA
)

func parseAlgorithm(v string) algorithm {
	switch strings.ToLower(v) {
	case "ecdsa":
		return algECDSA
	case "rsa":
		return algRSA
	default:
		return algNone
	}
}

// KeyboxSummary is the transient view of a keybox document.
type KeyboxSummary struct {
	NumberOfKeyboxes int  `json:"number_of_keyboxes"`
	HasPrivateKey    bool `json:"has_private_key"`
	HasECDSAKey      bool `json:"has_ecdsa_key"`
	HasRSAKey        bool `json:"has_rsa_key"`
	ECDSACertCount   int  `json:"ecdsa_cert_count"`
	RSACertCount     int  `json:"rsa_cert_count"`
	// TotalCertCount counts every Certificate tag, inside a Key or not.
	TotalCertCount int `json:"total_cert_count"`
}

func emptyKeybox() KeyboxSummary {
	return KeyboxSummary{NumberOfKeyboxes: -1}
}

// TypeLabel names the key algorithms present in the document.
func (s KeyboxSummary) TypeLabel() string {
	switch {
	case s.HasECDSAKey && s.HasRSAKey:
		return TypeBoth
	case s.HasECDSAKey:
		return TypeECDSA
	case s.HasRSAKey:
		return TypeRSA
	default:
		return TypeUnknown
	}
}

// DisplayCertCount is the chain length shown to users: the ECDSA chain when
// an ECDSA key is present, the RSA chain otherwise.
func (s KeyboxSummary) DisplayCertCount() int {
	if s.HasECDSAKey {
		return s.ECDSACertCount
	}
	return s.RSACertCount
}

// ParseKeybox scans xml and returns its summary. On malformed input it
// returns an empty summary and an error wrapping ErrParse.
func ParseKeybox(doc string) (KeyboxSummary, error) {
	return ParseKeyboxReader(strings.NewReader(doc))
}

// ParseKeyboxReader is ParseKeybox over a stream. The document is read in a
// single forward pass. Non-UTF-8 documents are decoded per their XML
// declaration.
func ParseKeyboxReader(r io.Reader) (KeyboxSummary, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	sc := &keyboxScanner{dec: dec}
	s, err := sc.scan()
	if err != nil {
		return emptyKeybox(), fmt.Errorf("%w: %v", ErrParse, err)
	}
	return s, nil
}

// charsetReader decodes the encodings a WHATWG label names, e.g. ISO-8859-1
// or windows-1252.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

type keyboxScanner struct {
	dec     *xml.Decoder
	pending xml.Token
}

func (sc *keyboxScanner) next() (xml.Token, error) {
	if sc.pending != nil {
		t := sc.pending
		sc.pending = nil
		return t, nil
	}
	t, err := sc.dec.Token()
	if err != nil {
		return nil, err
	}
	return xml.CopyToken(t), nil
}

func (sc *keyboxScanner) scan() (KeyboxSummary, error) {
	s := emptyKeybox()
	current := algNone
	sawRoot := false

	for {
		tok, err := sc.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			switch t.Name.Local {
			case tagNumberOfKeyboxes:
				s.NumberOfKeyboxes = sc.readCount()
			case tagKey:
				current = algNone
				for _, a := range t.Attr {
					if a.Name.Local == "algorithm" {
						current = parseAlgorithm(a.Value)
						break
					}
				}
				switch current {
				case algECDSA:
					s.HasECDSAKey = true
				case algRSA:
					s.HasRSAKey = true
				}
			case tagPrivateKey:
				s.HasPrivateKey = true
			case tagCertificate:
				s.TotalCertCount++
				switch current {
				case algECDSA:
					s.ECDSACertCount++
				case algRSA:
					s.RSACertCount++
				}
			}
		case xml.EndElement:
			if t.Name.Local == tagKey {
				current = algNone
			}
		}
	}

	if !sawRoot {
		return s, errors.New("document has no root element")
	}
	return s, nil
}

// readCount interprets the text right after a NumberOfKeyboxes start tag.
// Comments and processing instructions are skipped and the text around them
// is joined. Anything other than integer text yields -1; the first token that
// ends the text is pushed back so the scan still sees it.
func (sc *keyboxScanner) readCount() int {
	var text strings.Builder
	sawText := false
scan:
	for {
		tok, err := sc.next()
		if err != nil {
			// Surface the decoder error on the next call.
			return -1
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
			sawText = true
		case xml.Comment, xml.ProcInst:
		default:
			sc.pending = tok
			break scan
		}
	}
	if !sawText {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(text.String()))
	if err != nil {
		return -1
	}
	return n
}
