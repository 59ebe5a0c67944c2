package schema

import _ "embed"

// FuzzV1Schema contains the JSON schema for fuzzing manifests.
//
//go:embed fuzz.v1.json
var FuzzV1Schema []byte
