package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// PostgreSQLProvider implements the StorageProvider interface using PostgreSQL
type PostgreSQLProvider struct {
	db            *sql.DB
	pipelineStore *PostgreSQLPipelineStore
	catalogStore  *PostgreSQLCatalogStore
	accountStore  *PostgreSQLAccountStore
}

// PostgreSQLProviderConfig contains configuration for the PostgreSQL provider
type PostgreSQLProviderConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewPostgreSQLProvider creates a new PostgreSQL storage provider
func NewPostgreSQLProvider(config PostgreSQLProviderConfig) (*PostgreSQLProvider, error) {
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &PostgreSQLProvider{
		db:            db,
		pipelineStore: &PostgreSQLPipelineStore{db: db},
		catalogStore:  &PostgreSQLCatalogStore{db: db},
		accountStore:  &PostgreSQLAccountStore{db: db},
	}, nil
}

// Initialize sets up the storage backend
func (p *PostgreSQLProvider) Initialize() error {
	if err := p.pipelineStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize pipeline store: %w", err)
	}
	if err := p.catalogStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize catalog store: %w", err)
	}
	if err := p.accountStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize account store: %w", err)
	}
	return nil
}

// Close cleans up resources
func (p *PostgreSQLProvider) Close() error {
	return p.db.Close()
}

// GetPipelineStore returns a store for pipeline definitions
func (p *PostgreSQLProvider) GetPipelineStore() PipelineStore {
	return p.pipelineStore
}

// GetCatalogStore returns a store for streams, functions and destinations
func (p *PostgreSQLProvider) GetCatalogStore() CatalogStore {
	return p.catalogStore
}

// GetAccountStore returns a store for account data
func (p *PostgreSQLProvider) GetAccountStore() AccountStore {
	return p.accountStore
}

// PostgreSQLPipelineStore implements the PipelineStore interface using PostgreSQL
type PostgreSQLPipelineStore struct {
	db *sql.DB
}

// Initialize creates the pipelines table
func (s *PostgreSQLPipelineStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pipelines (
			org_id TEXT NOT NULL,
			pipeline_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			source_type TEXT,
			definition BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (org_id, pipeline_id)
		);
		CREATE INDEX IF NOT EXISTS pipelines_org_id_idx ON pipelines (org_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create pipelines table: %w", err)
	}
	return nil
}

// SavePipeline persists a pipeline definition
func (s *PostgreSQLPipelineStore) SavePipeline(orgID, pipelineID string, definition []byte) error {
	meta := extractMetadata(orgID, pipelineID, definition)
	now := time.Now()

	_, err := s.db.Exec(`
		INSERT INTO pipelines (org_id, pipeline_id, name, description, source_type, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (org_id, pipeline_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			source_type = EXCLUDED.source_type,
			definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at`,
		orgID, pipelineID, meta.Name, meta.Description, meta.SourceType, definition, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	return nil
}

// GetPipeline retrieves a pipeline definition
func (s *PostgreSQLPipelineStore) GetPipeline(orgID, pipelineID string) ([]byte, error) {
	var definition []byte
	err := s.db.QueryRow(
		"SELECT definition FROM pipelines WHERE org_id = $1 AND pipeline_id = $2",
		orgID, pipelineID,
	).Scan(&definition)

	if err == sql.ErrNoRows {
		return nil, ErrPipelineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}
	return definition, nil
}

// ListPipelines returns all pipeline IDs for an organization
func (s *PostgreSQLPipelineStore) ListPipelines(orgID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT pipeline_id FROM pipelines WHERE org_id = $1 ORDER BY pipeline_id",
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetPipelineMetadata retrieves metadata for a pipeline
func (s *PostgreSQLPipelineStore) GetPipelineMetadata(orgID, pipelineID string) (pipeline.Metadata, error) {
	var meta pipeline.Metadata
	var description, sourceType sql.NullString
	var createdAt, updatedAt time.Time

	err := s.db.QueryRow(
		"SELECT pipeline_id, org_id, name, description, source_type, created_at, updated_at FROM pipelines WHERE org_id = $1 AND pipeline_id = $2",
		orgID, pipelineID,
	).Scan(&meta.ID, &meta.OrgID, &meta.Name, &description, &sourceType, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return pipeline.Metadata{}, ErrPipelineNotFound
	}
	if err != nil {
		return pipeline.Metadata{}, fmt.Errorf("failed to get pipeline metadata: %w", err)
	}

	meta.Description = description.String
	meta.SourceType = sourceType.String
	meta.CreatedAt = createdAt.Unix()
	meta.UpdatedAt = updatedAt.Unix()
	return meta, nil
}

// ListPipelinesWithMetadata returns all pipelines with metadata for an organization
func (s *PostgreSQLPipelineStore) ListPipelinesWithMetadata(orgID string) ([]pipeline.Metadata, error) {
	rows, err := s.db.Query(
		"SELECT pipeline_id, org_id, name, description, source_type, created_at, updated_at FROM pipelines WHERE org_id = $1 ORDER BY pipeline_id",
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline metadata: %w", err)
	}
	defer rows.Close()

	var metas []pipeline.Metadata
	for rows.Next() {
		var meta pipeline.Metadata
		var description, sourceType sql.NullString
		var createdAt, updatedAt time.Time

		if err := rows.Scan(&meta.ID, &meta.OrgID, &meta.Name, &description, &sourceType, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline metadata: %w", err)
		}
		meta.Description = description.String
		meta.SourceType = sourceType.String
		meta.CreatedAt = createdAt.Unix()
		meta.UpdatedAt = updatedAt.Unix()
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// DeletePipeline removes a pipeline definition
func (s *PostgreSQLPipelineStore) DeletePipeline(orgID, pipelineID string) error {
	result, err := s.db.Exec(
		"DELETE FROM pipelines WHERE org_id = $1 AND pipeline_id = $2",
		orgID, pipelineID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrPipelineNotFound
	}
	return nil
}

// PostgreSQLCatalogStore implements the CatalogStore interface using a single
// entries table keyed by organization and entry kind.
type PostgreSQLCatalogStore struct {
	db *sql.DB
}

// Initialize creates the catalog table
func (s *PostgreSQLCatalogStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_entries (
			org_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (org_id, kind, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create catalog table: %w", err)
	}
	return nil
}

func (s *PostgreSQLCatalogStore) list(orgID, kind string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM catalog_entries WHERE org_id = $1 AND kind = $2 ORDER BY name",
		orgID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgreSQLCatalogStore) add(orgID, kind, name string) error {
	_, err := s.db.Exec(
		"INSERT INTO catalog_entries (org_id, kind, name) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		orgID, kind, name,
	)
	if err != nil {
		return fmt.Errorf("failed to add %s entry: %w", kind, err)
	}
	return nil
}

// ListStreams returns all known stream names for an organization
func (s *PostgreSQLCatalogStore) ListStreams(orgID string) ([]string, error) {
	return s.list(orgID, "stream")
}

// AddStream registers a stream name
func (s *PostgreSQLCatalogStore) AddStream(orgID, name string) error {
	return s.add(orgID, "stream", name)
}

// ListFunctions returns all processing function names for an organization
func (s *PostgreSQLCatalogStore) ListFunctions(orgID string) ([]string, error) {
	return s.list(orgID, "function")
}

// AddFunction registers a processing function name
func (s *PostgreSQLCatalogStore) AddFunction(orgID, name string) error {
	return s.add(orgID, "function", name)
}

// ListDestinations returns all remote destination names for an organization
func (s *PostgreSQLCatalogStore) ListDestinations(orgID string) ([]string, error) {
	return s.list(orgID, "destination")
}

// AddDestination registers a remote destination name
func (s *PostgreSQLCatalogStore) AddDestination(orgID, name string) error {
	return s.add(orgID, "destination", name)
}

// PostgreSQLAccountStore implements the AccountStore interface using PostgreSQL
type PostgreSQLAccountStore struct {
	db *sql.DB
}

// Initialize creates the accounts table
func (s *PostgreSQLAccountStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			api_token TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS accounts_api_token_idx ON accounts (api_token);
	`)
	if err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

// SaveAccount persists an account
func (s *PostgreSQLAccountStore) SaveAccount(account auth.Account) error {
	_, err := s.db.Exec(`
		INSERT INTO accounts (id, username, password_hash, api_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			api_token = EXCLUDED.api_token,
			updated_at = EXCLUDED.updated_at`,
		account.ID, account.Username, account.PasswordHash, account.APIToken, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *PostgreSQLAccountStore) scanAccount(row *sql.Row) (auth.Account, error) {
	var account auth.Account
	var apiToken sql.NullString

	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &apiToken, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return auth.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	account.APIToken = apiToken.String
	return account, nil
}

// GetAccount retrieves an account by ID
func (s *PostgreSQLAccountStore) GetAccount(accountID string) (auth.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT id, username, password_hash, api_token, created_at, updated_at FROM accounts WHERE id = $1",
		accountID,
	))
}

// GetAccountByUsername retrieves an account by username
func (s *PostgreSQLAccountStore) GetAccountByUsername(username string) (auth.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT id, username, password_hash, api_token, created_at, updated_at FROM accounts WHERE username = $1",
		username,
	))
}

// GetAccountByToken retrieves an account by API token
func (s *PostgreSQLAccountStore) GetAccountByToken(token string) (auth.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT id, username, password_hash, api_token, created_at, updated_at FROM accounts WHERE api_token = $1",
		token,
	))
}

// ListAccounts returns all accounts
func (s *PostgreSQLAccountStore) ListAccounts() ([]auth.Account, error) {
	rows, err := s.db.Query(
		"SELECT id, username, password_hash, api_token, created_at, updated_at FROM accounts ORDER BY username",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []auth.Account
	for rows.Next() {
		var account auth.Account
		var apiToken sql.NullString
		if err := rows.Scan(&account.ID, &account.Username, &account.PasswordHash, &apiToken, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.APIToken = apiToken.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account
func (s *PostgreSQLAccountStore) DeleteAccount(accountID string) error {
	result, err := s.db.Exec("DELETE FROM accounts WHERE id = $1", accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
