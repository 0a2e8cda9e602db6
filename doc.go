// Package sealenv loads KEY=VALUE environment files into immutable configurations,
// optionally decrypting them, coercing values to typed primitives or JSON trees,
// and validating them against a schema.
//
// Quick Start:
//
//	type App struct {
//	    Port int    `json:"PORT" validate:"required,min=1,max=65535"`
//	    Mode string `json:"MODE" validate:"oneof=dev prod"`
//	}
//
//	key, err := secretkey.Resolve(secretkey.Options{})
//
//	cfgs, err := sealenv.NewLoader().
//	    WithKey(key).
//	    WithSchema(sealenv.NewStructSchema[App](nil)).
//	    Concurrency(4).
//	    LoadAll(ctx, "tenants/*.env")
//
// Value grammar: true/false/null tokens (case-insensitive), numbers, JSON objects,
// arrays and quoted strings; anything else stays a string. Inline comments start at
// whitespace followed by '#' unless the value is a complete JSON document.
//
// Sealed files are produced with WriteSealed or SealFile and read back by any
// Loader configured with the same key.
package sealenv
