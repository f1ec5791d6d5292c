package cmd

import (
	"fmt"

	"content-sync/core/config"
	"content-sync/core/database"
	"content-sync/core/logger"
	"content-sync/core/reconcile"
	"content-sync/core/record"
	"content-sync/core/snapshot"
	"content-sync/core/storage"
	"content-sync/feature/content"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

// sourceFlags are the snapshot and import settings shared by plan, import and serve.
type sourceFlags struct {
	source     string
	bucket     bool
	prefix     string
	duplicates string
	owner      string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Snapshot directory (overrides snapshot.dir)")
	cmd.Flags().BoolVar(&f.bucket, "bucket", false, "Read the snapshot from the storage bucket")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Snapshot key prefix inside the bucket (overrides snapshot.prefix)")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", "", "Duplicate identity policy: strict or lenient (overrides import.duplicates)")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Default owner identity for owner-less records (overrides import.default_owner)")
}

// apply overlays explicitly set flags on cfg.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("source") {
		cfg.Snapshot.Dir = f.source
		cfg.Snapshot.UseBucket = false
	}
	if cmd.Flags().Changed("bucket") {
		cfg.Snapshot.UseBucket = f.bucket
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Snapshot.Prefix = f.prefix
	}
	if cmd.Flags().Changed("duplicates") {
		cfg.Import.Duplicates = f.duplicates
	}
	if cmd.Flags().Changed("owner") {
		cfg.Import.DefaultOwner = f.owner
	}
}

// runtime is everything a command needs to plan and apply an import.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *content.Store
	spec   *reconcile.Spec
}

// setup loads configuration and wires the snapshot, the destination and the plan spec.
// It never changes the destination schema.
func setup(cmd *cobra.Command, flags *sourceFlags) (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	flags.apply(cmd, cfg)

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	policy, err := record.ParseDuplicatePolicy(cfg.Import.Duplicates)
	if err != nil {
		return nil, err
	}

	registry, err := content.LoadRegistry(cfg.Import.TypesFile)
	if err != nil {
		return nil, err
	}

	needsStorage := cfg.Snapshot.UseBucket || hasFileTypes(registry)
	var client storage.Client
	if needsStorage {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	var src snapshot.ScanSource
	if cfg.Snapshot.UseBucket {
		src = snapshot.NewBucketScanner(client, cfg.Storage.Bucket, cfg.Snapshot.Prefix)
		l.Info("Reading snapshot from bucket",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Snapshot.Prefix),
		)
	} else {
		src = snapshot.NewDirScanner(cfg.Snapshot.Dir)
		l.Info("Reading snapshot from directory", zap.String("dir", cfg.Snapshot.Dir))
	}
	dec := snapshot.NewJSONDecoder(src)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var files *content.Files
	if client != nil {
		files = content.NewFiles(client, cfg.Storage.Bucket, content.DefaultFilesPrefix, src, l)
	}
	store := content.NewStore(db, registry, dec, files, l)
	if err := store.Open(); err != nil {
		return nil, err
	}

	spec := &reconcile.Spec{
		Scanner:         src,
		Decoder:         dec,
		Lookup:          store,
		Capabilities:    registry,
		Duplicates:      policy,
		DefaultOwner:    cfg.Import.DefaultOwner,
		LookupChunkSize: cfg.Import.LookupChunkSize,
		Logger:          l,
	}

	return &runtime{cfg: cfg, logger: l, store: store, spec: spec}, nil
}

func hasFileTypes(r *content.Registry) bool {
	for _, t := range r.Types() {
		if r.HasFiles(t) {
			return true
		}
	}
	return false
}
