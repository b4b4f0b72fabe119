package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// RedisProvider implements the StorageProvider interface using Redis
type RedisProvider struct {
	client        *redis.Client
	pipelineStore *RedisPipelineStore
	catalogStore  *RedisCatalogStore
	accountStore  *RedisAccountStore
}

// RedisProviderConfig contains configuration for the Redis provider
type RedisProviderConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisProvider creates a new Redis storage provider
func NewRedisProvider(config RedisProviderConfig) (*RedisProvider, error) {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "pipeliner:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return NewRedisProviderWithClient(client, config.KeyPrefix), nil
}

// NewRedisProviderWithClient creates a Redis storage provider around an
// existing client. This is primarily used for testing with miniredis.
func NewRedisProviderWithClient(client *redis.Client, keyPrefix string) *RedisProvider {
	return &RedisProvider{
		client:        client,
		pipelineStore: &RedisPipelineStore{client: client, prefix: keyPrefix},
		catalogStore:  &RedisCatalogStore{client: client, prefix: keyPrefix},
		accountStore:  &RedisAccountStore{client: client, prefix: keyPrefix},
	}
}

// Initialize sets up the storage backend
func (p *RedisProvider) Initialize() error {
	if err := p.client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Close cleans up resources
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// GetPipelineStore returns a store for pipeline definitions
func (p *RedisProvider) GetPipelineStore() PipelineStore {
	return p.pipelineStore
}

// GetCatalogStore returns a store for streams, functions and destinations
func (p *RedisProvider) GetCatalogStore() CatalogStore {
	return p.catalogStore
}

// GetAccountStore returns a store for account data
func (p *RedisProvider) GetAccountStore() AccountStore {
	return p.accountStore
}

// RedisPipelineStore implements the PipelineStore interface using Redis hashes
type RedisPipelineStore struct {
	client *redis.Client
	prefix string
}

func (s *RedisPipelineStore) definitionsKey(orgID string) string {
	return s.prefix + "pipelines:" + orgID
}

func (s *RedisPipelineStore) metadataKey(orgID string) string {
	return s.prefix + "pipelinemeta:" + orgID
}

// SavePipeline persists a pipeline definition
func (s *RedisPipelineStore) SavePipeline(orgID, pipelineID string, definition []byte) error {
	ctx := context.Background()

	meta := extractMetadata(orgID, pipelineID, definition)
	meta.CreatedAt = nowUnix()
	meta.UpdatedAt = meta.CreatedAt

	// Preserve the original creation time on update
	if raw, err := s.client.HGet(ctx, s.metadataKey(orgID), pipelineID).Result(); err == nil {
		var existing pipeline.Metadata
		if err := json.Unmarshal([]byte(raw), &existing); err == nil {
			meta.CreatedAt = existing.CreatedAt
		}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline metadata: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.definitionsKey(orgID), pipelineID, definition)
	pipe.HSet(ctx, s.metadataKey(orgID), pipelineID, metaJSON)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	return nil
}

// GetPipeline retrieves a pipeline definition
func (s *RedisPipelineStore) GetPipeline(orgID, pipelineID string) ([]byte, error) {
	definition, err := s.client.HGet(context.Background(), s.definitionsKey(orgID), pipelineID).Bytes()
	if err == redis.Nil {
		return nil, ErrPipelineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}
	return definition, nil
}

// ListPipelines returns all pipeline IDs for an organization
func (s *RedisPipelineStore) ListPipelines(orgID string) ([]string, error) {
	ids, err := s.client.HKeys(context.Background(), s.definitionsKey(orgID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetPipelineMetadata retrieves metadata for a pipeline
func (s *RedisPipelineStore) GetPipelineMetadata(orgID, pipelineID string) (pipeline.Metadata, error) {
	raw, err := s.client.HGet(context.Background(), s.metadataKey(orgID), pipelineID).Result()
	if err == redis.Nil {
		return pipeline.Metadata{}, ErrPipelineNotFound
	}
	if err != nil {
		return pipeline.Metadata{}, fmt.Errorf("failed to get pipeline metadata: %w", err)
	}

	var meta pipeline.Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return pipeline.Metadata{}, fmt.Errorf("failed to unmarshal pipeline metadata: %w", err)
	}
	return meta, nil
}

// ListPipelinesWithMetadata returns all pipelines with metadata for an organization
func (s *RedisPipelineStore) ListPipelinesWithMetadata(orgID string) ([]pipeline.Metadata, error) {
	raw, err := s.client.HGetAll(context.Background(), s.metadataKey(orgID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline metadata: %w", err)
	}

	metas := make([]pipeline.Metadata, 0, len(raw))
	for _, value := range raw {
		var meta pipeline.Metadata
		if err := json.Unmarshal([]byte(value), &meta); err != nil {
			continue
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, nil
}

// DeletePipeline removes a pipeline definition
func (s *RedisPipelineStore) DeletePipeline(orgID, pipelineID string) error {
	ctx := context.Background()

	removed, err := s.client.HDel(ctx, s.definitionsKey(orgID), pipelineID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}
	if removed == 0 {
		return ErrPipelineNotFound
	}
	s.client.HDel(ctx, s.metadataKey(orgID), pipelineID)
	return nil
}

// RedisCatalogStore implements the CatalogStore interface using Redis sets
type RedisCatalogStore struct {
	client *redis.Client
	prefix string
}

func (s *RedisCatalogStore) key(kind, orgID string) string {
	return s.prefix + "catalog:" + kind + ":" + orgID
}

func (s *RedisCatalogStore) list(kind, orgID string) ([]string, error) {
	names, err := s.client.SMembers(context.Background(), s.key(kind, orgID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisCatalogStore) add(kind, orgID, name string) error {
	if err := s.client.SAdd(context.Background(), s.key(kind, orgID), name).Err(); err != nil {
		return fmt.Errorf("failed to add to %s: %w", kind, err)
	}
	return nil
}

// ListStreams returns all known stream names for an organization
func (s *RedisCatalogStore) ListStreams(orgID string) ([]string, error) {
	return s.list("streams", orgID)
}

// AddStream registers a stream name
func (s *RedisCatalogStore) AddStream(orgID, name string) error {
	return s.add("streams", orgID, name)
}

// ListFunctions returns all processing function names for an organization
func (s *RedisCatalogStore) ListFunctions(orgID string) ([]string, error) {
	return s.list("functions", orgID)
}

// AddFunction registers a processing function name
func (s *RedisCatalogStore) AddFunction(orgID, name string) error {
	return s.add("functions", orgID, name)
}

// ListDestinations returns all remote destination names for an organization
func (s *RedisCatalogStore) ListDestinations(orgID string) ([]string, error) {
	return s.list("destinations", orgID)
}

// AddDestination registers a remote destination name
func (s *RedisCatalogStore) AddDestination(orgID, name string) error {
	return s.add("destinations", orgID, name)
}

// RedisAccountStore implements the AccountStore interface using Redis hashes.
// Username and token lookups go through secondary index hashes.
type RedisAccountStore struct {
	client *redis.Client
	prefix string
}

// redisAccountRecord is the stored form of an account. auth.Account hides the
// credential fields from API JSON, so persistence needs its own shape.
type redisAccountRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	APIToken     string `json:"api_token"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func toRedisAccountRecord(account auth.Account) redisAccountRecord {
	return redisAccountRecord{
		ID:           account.ID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		APIToken:     account.APIToken,
		CreatedAt:    account.CreatedAt.Unix(),
		UpdatedAt:    account.UpdatedAt.Unix(),
	}
}

func (r redisAccountRecord) toAccount() auth.Account {
	return auth.Account{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		APIToken:     r.APIToken,
		CreatedAt:    time.Unix(r.CreatedAt, 0),
		UpdatedAt:    time.Unix(r.UpdatedAt, 0),
	}
}

func (s *RedisAccountStore) accountsKey() string {
	return s.prefix + "accounts"
}

func (s *RedisAccountStore) usernameIndexKey() string {
	return s.prefix + "accounts:by-username"
}

func (s *RedisAccountStore) tokenIndexKey() string {
	return s.prefix + "accounts:by-token"
}

// SaveAccount persists an account
func (s *RedisAccountStore) SaveAccount(account auth.Account) error {
	ctx := context.Background()

	accountJSON, err := json.Marshal(toRedisAccountRecord(account))
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.accountsKey(), account.ID, accountJSON)
	pipe.HSet(ctx, s.usernameIndexKey(), account.Username, account.ID)
	if account.APIToken != "" {
		pipe.HSet(ctx, s.tokenIndexKey(), account.APIToken, account.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID
func (s *RedisAccountStore) GetAccount(accountID string) (auth.Account, error) {
	raw, err := s.client.HGet(context.Background(), s.accountsKey(), accountID).Result()
	if err == redis.Nil {
		return auth.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	var record redisAccountRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return auth.Account{}, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return record.toAccount(), nil
}

// GetAccountByUsername retrieves an account by username
func (s *RedisAccountStore) GetAccountByUsername(username string) (auth.Account, error) {
	accountID, err := s.client.HGet(context.Background(), s.usernameIndexKey(), username).Result()
	if err == redis.Nil {
		return auth.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to look up username: %w", err)
	}
	return s.GetAccount(accountID)
}

// GetAccountByToken retrieves an account by API token
func (s *RedisAccountStore) GetAccountByToken(token string) (auth.Account, error) {
	accountID, err := s.client.HGet(context.Background(), s.tokenIndexKey(), token).Result()
	if err == redis.Nil {
		return auth.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to look up token: %w", err)
	}
	return s.GetAccount(accountID)
}

// ListAccounts returns all accounts
func (s *RedisAccountStore) ListAccounts() ([]auth.Account, error) {
	raw, err := s.client.HGetAll(context.Background(), s.accountsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]auth.Account, 0, len(raw))
	for _, value := range raw {
		var record redisAccountRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			continue
		}
		accounts = append(accounts, record.toAccount())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

// DeleteAccount removes an account
func (s *RedisAccountStore) DeleteAccount(accountID string) error {
	ctx := context.Background()

	account, err := s.GetAccount(accountID)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.accountsKey(), accountID)
	pipe.HDel(ctx, s.usernameIndexKey(), account.Username)
	if account.APIToken != "" {
		pipe.HDel(ctx, s.tokenIndexKey(), account.APIToken)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
