package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// StructuredJSONConfig is the layout of the JSON configuration file.
type StructuredJSONConfig struct {
	Vault struct {
		DSN string `json:"dsn"`
	} `json:"vault,omitempty"`

	Transfer struct {
		Delimiter         string `json:"delimiter"`
		FieldSeparator    string `json:"field_separator"`
		ImportPrefix      string `json:"import_prefix"`
		Encoding          string `json:"encoding"`
		MinHashIterations int    `json:"min_hash_iterations"`
	} `json:"transfer,omitempty"`

	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Vault: Vault{
			DSN: jsonCfg.Vault.DSN,
		},
		Transfer: Transfer{
			Delimiter:         jsonCfg.Transfer.Delimiter,
			FieldSeparator:    jsonCfg.Transfer.FieldSeparator,
			ImportPrefix:      jsonCfg.Transfer.ImportPrefix,
			Encoding:          jsonCfg.Transfer.Encoding,
			MinHashIterations: jsonCfg.Transfer.MinHashIterations,
		},
		Log: Log{
			File:  jsonCfg.Log.File,
			Level: jsonCfg.Log.Level,
		},
	}

	return cfg, nil
}
