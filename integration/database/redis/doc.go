// Package redis provides Redis client initialization, health checking,
// and the adapters that back the security core's shared-cache interfaces.
//
// This package wraps the go-redis client with connection validation,
// retry logic, and URL parsing. On top of the raw client it provides
// three small adapters:
//
//   - KV: the expiring key-value surface consumed by revocation.Registry
//     and the threat detectors (get/set/delete with TTL, SCAN-based key
//     enumeration for housekeeping sweeps)
//   - Locker: the atomic set-if-not-exists try-lock used by the rotation
//     engine's per-token concurrency lock
//   - FamilyStore: token-family persistence with version-checked
//     conditional writes inside a WATCH transaction so concurrent
//     rotations cannot clobber each other. Family keys carry a TTL
//     (default 30 days, refreshed on every save) so families of dead
//     sessions age out; align it with the session retention window via
//     WithFamilyTTL
//
// # Configuration
//
// All configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
//	}
//
// Both redis:// and rediss:// (TLS) URL schemes are supported.
//
// # Usage Example
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("Failed to connect to Redis:", err)
//	}
//	defer client.Close()
//
//	cache := redis.NewKV(client, cfg.ScanBatchSize)
//	registry := revocation.NewRegistry(cache, auditLog)
//
//	engine := rotation.NewEngine(verifier,
//		redis.NewLocker(client),
//		redis.NewFamilyStore(client),
//		registry, sessions)
//
// # Health Checking
//
// Healthcheck returns a ping-based check function suitable for
// Kubernetes readiness/liveness probes or HTTP health endpoints:
//
//	check := redis.Healthcheck(client)
//	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
//		if err := check(r.Context()); err != nil {
//			http.Error(w, "Redis unhealthy", http.StatusServiceUnavailable)
//			return
//		}
//		w.WriteHeader(http.StatusOK)
//	})
//
// # Error Handling
//
// The package defines domain-specific errors checked with errors.Is():
//
//   - ErrFailedToParseRedisConnString: malformed connection URL
//   - ErrRedisNotReady: Redis did not become ready within the timeout
//   - ErrEmptyConnectionURL: no connection URL provided
//   - ErrHealthcheckFailed: health check ping failed
//
// These wrap the underlying go-redis errors while providing stable types
// for application-level retry logic. Note that the security core treats
// any error from the KV adapter on the revocation-check path as
// fail-secure: an unreachable cache reads as revoked.
package redis
