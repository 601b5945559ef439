// Copyright 2017-2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package check validates ranges before they are used to slice mapped or
// owned table memory.
package check

import (
	"github.com/hashicorp/go-multierror"
)

// BytesRange checks that [startIdx, endIdx) is a valid window into a buffer
// of the given length:
// * 0 <= startIdx
// * startIdx <= endIdx
// * endIdx <= length
//
// All violated conditions are reported at once.
func BytesRange(length, startIdx, endIdx int) error {
	var result *multierror.Error
	if startIdx < 0 {
		result = multierror.Append(result, &ErrStartLessThanZero{StartIdx: startIdx})
	}
	if endIdx < startIdx {
		result = multierror.Append(result, &ErrEndLessThanStart{StartIdx: startIdx, EndIdx: endIdx})
	}
	if endIdx > length {
		result = multierror.Append(result, &ErrEndGreaterThanLength{Length: length, EndIdx: endIdx})
	}

	return result.ErrorOrNil()
}
