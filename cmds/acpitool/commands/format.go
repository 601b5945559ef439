// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"strings"
)

// Format is an output format of a verb.
type Format int

// Supported formats.
const (
	FormatUndefined = Format(iota)
	FormatText
	FormatJSON
)

// ParseFormat parses a --format value, FormatText if s is nil.
func ParseFormat(s *string) (Format, error) {
	if s == nil {
		return FormatText, nil
	}
	switch strings.Trim(strings.ToLower(*s), " ") {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatUndefined, ErrArgs{Err: fmt.Errorf("unknown format '%s'", *s)}
}
