// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user CUE files against embedded schemas.
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	value, err := cueutil.Validate(configSchema, "#Config", data, "config.cue")
//	if err != nil {
//	    return err // includes the file name and field path
//	}
//
// Errors are rendered with JSON-path style field locations such as
// "verify.external_classpath[0]".
package cueutil
