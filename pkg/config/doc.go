// Package config loads environment variables into typed configuration structs.
//
// Load reads a .env file from the working directory once per process (a
// missing file is not an error), then parses env tags with
// github.com/caarlos0/env/v11. Each configuration type is parsed once and
// cached, so packages can call Load for their own config without threading
// values through every constructor.
//
// # Usage
//
//	type StorageConfig struct {
//		Driver     string `env:"STORAGE_DRIVER" envDefault:"local"`
//		FolderPath string `env:"FOLDER_PATH" envDefault:"/tmp/files_manager"`
//	}
//
//	var cfg StorageConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Use LoadEnv to read additional env files (for example a per-environment
// override) before the first Load call.
package config
