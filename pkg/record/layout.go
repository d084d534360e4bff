// Copyright 2025 walteh LLC
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

package record

// pk45VersionOffset holds the origin game byte in both PK4 and PK5 records
const pk45VersionOffset = 0x5F

// 🗺️ layout describes where a format keeps its checksum and fields
type layout struct {
	stored int // boxed record size
	party  int // party record size

	checksumAt   int // offset of the stored checksum word
	checksumFrom int // first byte covered by the checksum
	checksumTo   int // end of the covered range, exclusive

	fields []field
}

func layoutOf(f Format) *layout {
	switch f {
	case FormatPK3:
		return &pk3Layout
	case FormatPK4:
		return &pk4Layout
	case FormatPK5:
		return &pk5Layout
	case FormatPK6:
		return &pk6Layout
	default:
		return nil
	}
}

var pk3Layout = layout{
	stored:       80,
	party:        100,
	checksumAt:   0x1C,
	checksumFrom: 0x20,
	checksumTo:   0x50,
	fields: []field{
		{name: "PID", offset: 0x00, kind: kindU32, randomizable: true},
		{name: "TID", offset: 0x04, kind: kindU16},
		{name: "SID", offset: 0x06, kind: kindU16},
		{name: "Language", offset: 0x12, kind: kindU8},
		{name: "Species", offset: 0x20, kind: kindU16},
		{name: "HeldItem", offset: 0x22, kind: kindU16},
		{name: "EXP", offset: 0x24, kind: kindU32},
		{name: "Friendship", offset: 0x29, kind: kindU8},
		{name: "Move1", offset: 0x2C, kind: kindU16},
		{name: "Move2", offset: 0x2E, kind: kindU16},
		{name: "Move3", offset: 0x30, kind: kindU16},
		{name: "Move4", offset: 0x32, kind: kindU16},
		{name: "Met_Level", offset: 0x46, kind: kindU8},
		{name: "Level", offset: 0x4E, kind: kindU8},
		{name: "IsEgg", offset: 0x4F, kind: kindFlag, bit: 6},
	},
}

// pk45Fields are shared by the two 136 byte generations
var pk45Fields = []field{
	{name: "PID", offset: 0x00, kind: kindU32, randomizable: true},
	{name: "Species", offset: 0x08, kind: kindU16},
	{name: "HeldItem", offset: 0x0A, kind: kindU16},
	{name: "TID", offset: 0x0C, kind: kindU16},
	{name: "SID", offset: 0x0E, kind: kindU16},
	{name: "EXP", offset: 0x10, kind: kindU32},
	{name: "Friendship", offset: 0x14, kind: kindU8},
	{name: "Ability", offset: 0x15, kind: kindU8},
	{name: "Language", offset: 0x17, kind: kindU8},
	{name: "Level", offset: 0x1B, kind: kindU8},
	{name: "Move1", offset: 0x28, kind: kindU16},
	{name: "Move2", offset: 0x2A, kind: kindU16},
	{name: "Move3", offset: 0x2C, kind: kindU16},
	{name: "Move4", offset: 0x2E, kind: kindU16},
	{name: "IsEgg", offset: 0x3B, kind: kindFlag, bit: 6},
	{name: "FatefulEncounter", offset: 0x40, kind: kindFlag, bit: 0},
	{name: "Version", offset: pk45VersionOffset, kind: kindU8},
	{name: "Met_Level", offset: 0x84, kind: kindU8},
}

var pk4Layout = layout{
	stored:       136,
	party:        236,
	checksumAt:   0x06,
	checksumFrom: 0x08,
	checksumTo:   0x88,
	fields:       pk45Fields,
}

var pk5Layout = layout{
	stored:       136,
	party:        220,
	checksumAt:   0x06,
	checksumFrom: 0x08,
	checksumTo:   0x88,
	fields: append(append([]field{}, pk45Fields...),
		field{name: "Nature", offset: 0x41, kind: kindU8},
		field{name: "HiddenAbility", offset: 0x42, kind: kindFlag, bit: 0},
	),
}

var pk6Layout = layout{
	stored:       232,
	party:        260,
	checksumAt:   0x06,
	checksumFrom: 0x08,
	checksumTo:   0xE8,
	fields: []field{
		{name: "EncryptionConstant", offset: 0x00, kind: kindU32, randomizable: true},
		{name: "Species", offset: 0x08, kind: kindU16},
		{name: "HeldItem", offset: 0x0A, kind: kindU16},
		{name: "TID", offset: 0x0C, kind: kindU16},
		{name: "SID", offset: 0x0E, kind: kindU16},
		{name: "EXP", offset: 0x10, kind: kindU32},
		{name: "Ability", offset: 0x14, kind: kindU8},
		{name: "PID", offset: 0x18, kind: kindU32, randomizable: true},
		{name: "Nature", offset: 0x1C, kind: kindU8},
		{name: "FatefulEncounter", offset: 0x1D, kind: kindFlag, bit: 0},
		{name: "Level", offset: 0x2F, kind: kindU8},
		{name: "Move1", offset: 0x5A, kind: kindU16},
		{name: "Move2", offset: 0x5C, kind: kindU16},
		{name: "Move3", offset: 0x5E, kind: kindU16},
		{name: "Move4", offset: 0x60, kind: kindU16},
		{name: "IsEgg", offset: 0x77, kind: kindFlag, bit: 6},
		{name: "Friendship", offset: 0xCA, kind: kindU8},
		{name: "Met_Level", offset: 0xDD, kind: kindU8},
		{name: "Version", offset: 0xDF, kind: kindU8},
		{name: "Language", offset: 0xE3, kind: kindU8},
	},
}
