package snapshot

// Config selects where the snapshot is read from.
type Config struct {
	// Dir is the local snapshot root.
	Dir string `mapstructure:"dir" default:"./snapshot"`
	// UseBucket reads the snapshot from the storage bucket instead of Dir.
	UseBucket bool `mapstructure:"use_bucket" default:"false"`
	// Prefix is the object key prefix of the snapshot inside the bucket.
	Prefix string `mapstructure:"prefix" default:"snapshot/"`
}
