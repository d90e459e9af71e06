// Package config provides configuration structures and utilities for a11yscan.
// It defines the command-line options of a run, the .a11yscan rule file
// format, the built-in rule set, and the construction of the rule registry
// and metadata catalog from rule files.
package config
