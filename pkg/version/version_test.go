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

package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input     string
		want      Version
		wantErr   error
		precision int
	}{
		{input: "1", want: Version{Major: 1, Precision: 1}},
		{input: "v2", want: Version{Major: 2, Precision: 1}},
		{input: "4.9", want: Version{Major: 4, Minor: 9, Precision: 2}},
		{input: "13.2.0", want: Version{Major: 13, Minor: 2, Patch: 0, Precision: 3}},
		{input: "10.2.1-6", want: Version{Major: 10, Minor: 2, Patch: 1, Precision: 3, Extras: "-6"}},
		{input: "", wantErr: ErrEmptyVersion},
		{input: "1.2.3.4", wantErr: ErrTooManyComponents},
		{input: "a.b", wantErr: ErrNonNumeric},
		{input: "1..3", wantErr: ErrNonNumeric},
		{input: "-1", wantErr: ErrNonNumeric},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseVersion(tc.input)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompareRespectsPrecision(t *testing.T) {
	v10 := MustParseVersion("10")
	v1031 := MustParseVersion("10.3.1")

	// Major-only versions compare equal to any release of that major.
	assert.Equal(t, 0, v10.Compare(v1031))
	assert.True(t, v10.EqualsOrNewer(v1031))
	assert.False(t, v10.IsNewer(v1031))

	assert.Equal(t, -1, MustParseVersion("4.8.5").Compare(MustParseVersion("4.9")))
	assert.Equal(t, 1, MustParseVersion("5.0").Compare(MustParseVersion("4.9.4")))
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		expr    string
		in      []string
		out     []string
		wantErr bool
	}{
		{expr: ":", in: []string{"0.1", "99.9.9"}},
		{expr: "4.9:", in: []string{"4.9", "4.9.0", "13.2.0"}, out: []string{"4.8.5"}},
		{expr: ":5", in: []string{"5.4.0", "3.1"}, out: []string{"6.0"}},
		{expr: "5:7", in: []string{"5.0", "7.5.0"}, out: []string{"4.9.4", "8.1"}},
		{expr: "13", in: []string{"13.2.0", "13.0"}, out: []string{"12.3", "14.0"}},
		{expr: "1:2:3", wantErr: true},
		{expr: "x:", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			r, err := ParseRange(tc.expr)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tc.in {
				assert.True(t, r.Contains(MustParseVersion(s)), "%s should be in %s", s, tc.expr)
			}
			for _, s := range tc.out {
				assert.False(t, r.Contains(MustParseVersion(s)), "%s should not be in %s", s, tc.expr)
			}
		})
	}
}
