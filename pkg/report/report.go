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

// Package report shapes a resolved microarchitecture into a serializable
// detection report with consistent metadata and versioning information.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/mchmarny/uarch/pkg/target"
)

// Kind identifies the report resource type.
const Kind = "Microarchitecture"

// APIVersion identifies the report schema version.
const APIVersion = "v1"

// Report is the serializable result of one detection run.
type Report struct {
	// Kind is the type of the report object.
	Kind string `json:"kind" yaml:"kind"`

	// APIVersion is the API version of the report object.
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`

	// Metadata contains key-value pairs with metadata about the run.
	Metadata map[string]string `json:"metadata" yaml:"metadata"`

	// Target describes the resolved microarchitecture.
	Target Target `json:"target" yaml:"target"`
}

// Target describes a resolved microarchitecture node.
type Target struct {
	// Name is the unique catalog name, e.g. "haswell" or "x86_64_v3".
	Name string `json:"name" yaml:"name"`

	// Vendor is the silicon vendor, or "generic" for architecture levels.
	Vendor string `json:"vendor" yaml:"vendor"`

	// Family is the architecture root, e.g. "x86_64".
	Family string `json:"family" yaml:"family"`

	// Generation of the microarchitecture, where relevant.
	Generation int `json:"generation,omitempty" yaml:"generation,omitempty"`

	// Features lists the features this target adds on top of its parents.
	Features []string `json:"features" yaml:"features"`

	// AllFeatures lists the full transitive feature set.
	AllFeatures []string `json:"allFeatures" yaml:"allFeatures"`

	// Compilers holds per-compiler optimization flag hints.
	Compilers map[string][]target.Compiler `json:"compilers,omitempty" yaml:"compilers,omitempty"`
}

// New builds a detection report for the given resolved node, stamped with a
// unique run id, creation timestamp, and tool version.
func New(m *target.Microarchitecture, version string) *Report {
	metadata := map[string]string{
		"id":        uuid.New().String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if version != "" {
		metadata["version"] = version
	}

	return &Report{
		Kind:       Kind,
		APIVersion: APIVersion,
		Metadata:   metadata,
		Target: Target{
			Name:        m.Name,
			Vendor:      m.Vendor,
			Family:      m.Family().Name,
			Generation:  m.Generation,
			Features:    m.Features.Sorted(),
			AllFeatures: m.AllFeatures().Sorted(),
			Compilers:   m.Compilers,
		},
	}
}
