// Package config loads the content-sync configuration.
//
// Values come from the environment and an optional .env file (godotenv), with
// defaults taken from the `default` struct tags of each section. Nested keys map
// to upper-cased, underscore-joined variables: import.lookup_chunk_size is read
// from IMPORT_LOOKUP_CHUNK_SIZE.
//
// Sections: server, storage, log, database, snapshot, import.
//
//	cfg, err := config.LoadConfig(".")
package config
