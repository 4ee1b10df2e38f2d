package store

// Backend names accepted by configuration.
const (
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists every supported backend name.
var Backends = []string{BackendBadger, BackendSQLite, BackendPostgres}
