package database

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"marketplace/internal/config"
	"marketplace/internal/obs"
)

// AuditSchema is the table the Scylla audit sink writes to.
const AuditSchema = `CREATE TABLE IF NOT EXISTS audit_logs (
	id timeuuid PRIMARY KEY,
	user_id text,
	user_email text,
	action text,
	resource text,
	resource_id text,
	detail text,
	ip_address text,
	user_agent text,
	success boolean,
	error_msg text,
	timestamp timestamp,
	session_id text
)`

func createScyllaCluster(cfg config.Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = time.Second
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// ConnectScylla opens the audit keyspace session. It returns nil, nil when
// SCYLLA_HOSTS is unset.
func ConnectScylla(cfg config.Config) (*gocql.Session, error) {
	if len(cfg.ScyllaHosts) == 0 {
		return nil, nil
	}

	session, err := createScyllaCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla session for %s: %w", cfg.ScyllaKeyspace, err)
	}
	if err := session.Query(AuditSchema).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("create audit_logs: %w", err)
	}

	obs.Logger.Info("scylla connected", "keyspace", cfg.ScyllaKeyspace, "hosts", cfg.ScyllaHosts)
	return session, nil
}
