// Package pg provides PostgreSQL connection management, health checking,
// and the durable stores behind the security core: session rows, login
// history, and the revocation audit log.
//
// This package wraps the pgx driver with application-level retry logic
// and connection pool tuning, and implements three store interfaces:
//
//   - SessionStore: session.Store. Point queries by identifier, active
//     listings per user for eviction, one-way revocation updates,
//     retention-window cleanup
//   - LoginHistory: threat.HistoryStore. Appends one row per login and
//     serves the user+time range queries the detectors run
//   - AuditLog: revocation.AuditLog. Append-only inserts; the registry
//     treats these as advisory and never fails an operation on them
//
// # Configuration
//
// All configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL,required"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
// # Usage Example
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("Failed to connect to PostgreSQL:", err)
//	}
//	defer pool.Close()
//
//	manager := session.NewManager(pg.NewSessionStore(pool))
//	history := pg.NewLoginHistory(pool)
//	registry := revocation.NewRegistry(cache, pg.NewAuditLog(pool))
//
// Each store's doc comment carries the table schema it expects; schema
// migration tooling is the application's concern.
//
// # Transactions
//
// Store methods join a transaction carried in the context:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	// store calls in ctx now run inside tx
//
//	return tx.Commit(ctx)
//
// # Health Checking
//
// Healthcheck returns a ping-based check function suitable for
// readiness probes:
//
//	check := pg.Healthcheck(pool)
package pg
