// Package config loads serializer options from files, property bags and
// the environment.
//
// Files are selected by extension:
//
//	.yaml, .yml    YAML
//	.toml          TOML
//	.json, .jsonc  JSON with comments and trailing commas
//
// Every source is funnelled through [FromMap], so the same keys apply
// everywhere:
//
//	polymorphism:       disabled | enabled | forced
//	validation:         none, extra, all, strict, full (joined by | or ,)
//	keep_identity:      bool
//	ignore_stored:      bool
//	allow_default_null: bool
//	enum_as_string:     bool
//	generic_objects:    bool
//
// Keys that are absent keep their default value. Unknown keys are
// rejected.
package config
