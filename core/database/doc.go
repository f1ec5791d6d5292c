// Package database opens the destination database through GORM.
//
// Connect supports MySQL for real destinations and SQLite (including ":memory:")
// for local runs and tests. TableColumns and MissingColumns back the startup
// check that the destination schema carries every column the importer writes.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "content_entities", []string{"uuid", "revision"})
package database
