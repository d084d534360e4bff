// Package config loads pkbatch run configuration.
//
//	            +-------------+
//	            |   Config    |
//	            |  (source +  |
//	            |   script)   |
//	            +------+------+
//	                   |
//	      +-----------+----+-----+-----------+
//	      |           |          |           |
//	+-----+----+ +----+----+ +---+----+ +----+----+
//	|   YAML   | |  JSON   | |  TOML  | |   HCL   |
//	+----------+ +---------+ +--------+ +---------+
//
// 🎯 Purpose:
// - Pick the records to edit: a box dump or a folder of record files
// - Carry the instruction lines inline or point at a script file
//
// 🔄 Flow:
//  1. LoadConfig picks the decoder from the file extension
//  2. Unknown fields are rejected by every decoder
//  3. Validate checks exclusive options and the box format
//  4. Relative paths resolve against the config file's folder
//
// 🔍 Example:
//
//	source:
//	  folder: saves
//	  include: ["**/*.pk6"]
//	instructions:
//	  - "=Species=25"
//	  - ".Level=50"
//
// The HCL form has a rand variable for random identifiers:
//
//	source {
//	  box    = "box.bin"
//	  format = "pk6"
//	}
//	instructions = ["!IsEgg=true", ".PID=${rand}"]
package config
