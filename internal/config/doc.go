// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides process configuration for the seacam daemon.
//
// Precedence is ENV > file > defaults. The YAML file is decoded strictly:
// unknown keys and trailing documents are errors.
//
// The intervals section only seeds the scheduler's settings. Once an
// operator changes a setting it lives in the configuration store and the
// file value no longer applies.
package config
