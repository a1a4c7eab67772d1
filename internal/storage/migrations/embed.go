package migrations

import "embed"

// Schema files ship inside the binary, so deploys carry no external
// migration directory.
var (
	//go:embed postgres/*.sql
	PostgresFS embed.FS

	//go:embed clickhouse/*.sql
	ClickhouseFS embed.FS
)
