// Package schemas embeds the JSON Schemas shipped with the portal.
package schemas

import (
	_ "embed"

	"github.com/jonathan/recruit-portal/internal/schemas"
)

// ConfigSchema validates the optional JSON config file.
//
//go:embed config.schema.json
var ConfigSchema string

// StorageSchema validates the CLI storage file.
//
//go:embed storage.schema.json
var StorageSchema string

var (
	Config  = schemas.New("config", ConfigSchema)
	Storage = schemas.New("storage", StorageSchema)
)
