// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package version parses compiler release strings and the version ranges
// that gate per-target optimization hints.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrInvalidRange      = errors.New("version range has more than one separator")
)

// Version is a release number with flexible precision. "10" matches any
// 10.x.y release when used as a range bound, so the Precision field records
// how many components are significant for comparisons.
type Version struct {
	Major int `json:"major,omitempty" yaml:"major,omitempty"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision indicates how many components are significant (1, 2, or 3)
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Extras keeps vendor suffixes such as "-6" in Debian's "10.2.1-6"
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion creates a Version with all three components significant.
func NewVersion(major, minor, patch int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Precision: 3,
	}
}

// String renders the version respecting its precision. Extras are omitted.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses "1", "1.2", "1.2.3", with an optional "v" prefix.
// Anything after a '-' or '+' following a digit is preserved in Extras,
// which handles distro-patched compiler versions like "10.2.1-6".
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prevCh := s[i-1]
			if prevCh >= '0' && prevCh <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParseVersion parses a version string and panics on failure.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// EqualsOrNewer returns true if v is equal to or newer than other.
// Comparison is performed up to the precision of v, so a precision-1
// Version{Major: 10} is equal-or-newer than any 10.x.y.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsNewer returns true if v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

// Equals returns true if all components match, ignoring precision.
func (v Version) Equals(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// Components beyond the lower of the two precisions are not compared.
func (v Version) Compare(other Version) int {
	precision := v.Precision
	if other.Precision < precision {
		precision = other.Precision
	}
	if precision == 0 {
		precision = 3
	}

	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if precision == 1 {
		return 0
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if precision == 2 {
		return 0
	}
	return compareInt(v.Patch, other.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the version carries a usable precision and
// non-negative components.
func (v Version) IsValid() bool {
	if v.Precision < 1 || v.Precision > 3 {
		return false
	}
	return v.Major >= 0 && v.Minor >= 0 && v.Patch >= 0
}

// Range is an inclusive version interval written "lo:hi". Either bound may
// be omitted: "4.9:" means 4.9 and newer, ":5" means anything up to 5.x.y,
// and ":" matches every release. A bare "13" matches only the 13.x.y series.
type Range struct {
	Lo Version
	Hi Version

	hasLo bool
	hasHi bool
	exact bool
}

// ParseRange parses a version range expression.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == ":" {
		return Range{}, nil
	}

	if !strings.Contains(s, ":") {
		v, err := ParseVersion(s)
		if err != nil {
			return Range{}, err
		}
		return Range{Lo: v, Hi: v, hasLo: true, hasHi: true, exact: true}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	var r Range
	if parts[0] != "" {
		lo, err := ParseVersion(parts[0])
		if err != nil {
			return Range{}, err
		}
		r.Lo = lo
		r.hasLo = true
	}
	if parts[1] != "" {
		hi, err := ParseVersion(parts[1])
		if err != nil {
			return Range{}, err
		}
		r.Hi = hi
		r.hasHi = true
	}
	return r, nil
}

// Contains reports whether v falls inside the range. Bound precision is
// honored: Hi of "10" admits 10.3.1, Lo of "4.9" rejects 4.8.5.
func (r Range) Contains(v Version) bool {
	if r.exact {
		return r.Lo.Compare(v) == 0
	}
	if r.hasLo && v.Compare(r.Lo) < 0 {
		return false
	}
	if r.hasHi && v.Compare(r.Hi) > 0 {
		return false
	}
	return true
}
