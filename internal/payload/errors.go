// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package payload

import "errors"

// ErrParse is returned (wrapped) when a payload is not well-formed XML or JSON.
var ErrParse = errors.New("payload parse failed")
