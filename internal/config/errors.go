// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

// Sentinels for config file rejections. Match them with errors.Is.
var (
	// ErrUnknownConfigField marks a seacam config key the strict decoder does not know,
	// usually a misspelt capture or intervals setting.
	ErrUnknownConfigField = errors.New("unknown config field")
	// ErrMultipleDocuments marks a config file carrying more than one YAML document.
	ErrMultipleDocuments = errors.New("config file contains multiple documents or trailing content")
)
