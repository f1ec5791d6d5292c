package reconcile

// Config holds the import run settings.
type Config struct {
	// Duplicates is the duplicate identity policy (strict, lenient).
	Duplicates string `mapstructure:"duplicates" default:"strict"`
	// DefaultOwner is assigned to owner-less records of owner-tracking types.
	DefaultOwner string `mapstructure:"default_owner" default:""`
	// FailFast stops the apply phase at the first failed record.
	FailFast bool `mapstructure:"fail_fast" default:"false"`
	// LookupChunkSize is the number of identities per destination preload query.
	// Zero disables preloading.
	LookupChunkSize int `mapstructure:"lookup_chunk_size" default:"500"`
	// TypesFile is the optional YAML type registry.
	TypesFile string `mapstructure:"types_file" default:""`
}
