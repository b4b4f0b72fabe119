package storage

import (
	"sort"
	"sync"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// MemoryProvider implements the StorageProvider interface using in-memory storage
type MemoryProvider struct {
	pipelineStore *MemoryPipelineStore
	catalogStore  *MemoryCatalogStore
	accountStore  *MemoryAccountStore
}

// NewMemoryProvider creates a new in-memory storage provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		pipelineStore: NewMemoryPipelineStore(),
		catalogStore:  NewMemoryCatalogStore(),
		accountStore:  NewMemoryAccountStore(),
	}
}

// Initialize sets up the storage backend
func (p *MemoryProvider) Initialize() error {
	return nil
}

// Close cleans up resources
func (p *MemoryProvider) Close() error {
	return nil
}

// GetPipelineStore returns a store for pipeline definitions
func (p *MemoryProvider) GetPipelineStore() PipelineStore {
	return p.pipelineStore
}

// GetCatalogStore returns a store for streams, functions and destinations
func (p *MemoryProvider) GetCatalogStore() CatalogStore {
	return p.catalogStore
}

// GetAccountStore returns a store for account data
func (p *MemoryProvider) GetAccountStore() AccountStore {
	return p.accountStore
}

// MemoryPipelineStore implements the PipelineStore interface using in-memory storage
type MemoryPipelineStore struct {
	definitions map[string]map[string][]byte
	metadata    map[string]map[string]pipeline.Metadata
	mu          sync.RWMutex
}

// NewMemoryPipelineStore creates a new in-memory pipeline store
func NewMemoryPipelineStore() *MemoryPipelineStore {
	return &MemoryPipelineStore{
		definitions: make(map[string]map[string][]byte),
		metadata:    make(map[string]map[string]pipeline.Metadata),
	}
}

// SavePipeline persists a pipeline definition
func (s *MemoryPipelineStore) SavePipeline(orgID, pipelineID string, definition []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.definitions[orgID]; !ok {
		s.definitions[orgID] = make(map[string][]byte)
		s.metadata[orgID] = make(map[string]pipeline.Metadata)
	}

	stored := make([]byte, len(definition))
	copy(stored, definition)
	s.definitions[orgID][pipelineID] = stored

	meta := extractMetadata(orgID, pipelineID, definition)
	if existing, ok := s.metadata[orgID][pipelineID]; ok {
		meta.CreatedAt = existing.CreatedAt
	} else {
		meta.CreatedAt = nowUnix()
	}
	meta.UpdatedAt = nowUnix()
	s.metadata[orgID][pipelineID] = meta

	return nil
}

// GetPipeline retrieves a pipeline definition
func (s *MemoryPipelineStore) GetPipeline(orgID, pipelineID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	definition, ok := s.definitions[orgID][pipelineID]
	if !ok {
		return nil, ErrPipelineNotFound
	}

	out := make([]byte, len(definition))
	copy(out, definition)
	return out, nil
}

// ListPipelines returns all pipeline IDs for an organization
func (s *MemoryPipelineStore) ListPipelines(orgID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.definitions[orgID]))
	for id := range s.definitions[orgID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetPipelineMetadata retrieves metadata for a pipeline
func (s *MemoryPipelineStore) GetPipelineMetadata(orgID, pipelineID string) (pipeline.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.metadata[orgID][pipelineID]
	if !ok {
		return pipeline.Metadata{}, ErrPipelineNotFound
	}
	return meta, nil
}

// ListPipelinesWithMetadata returns all pipelines with metadata for an organization
func (s *MemoryPipelineStore) ListPipelinesWithMetadata(orgID string) ([]pipeline.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]pipeline.Metadata, 0, len(s.metadata[orgID]))
	for _, meta := range s.metadata[orgID] {
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, nil
}

// DeletePipeline removes a pipeline definition
func (s *MemoryPipelineStore) DeletePipeline(orgID, pipelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.definitions[orgID][pipelineID]; !ok {
		return ErrPipelineNotFound
	}
	delete(s.definitions[orgID], pipelineID)
	delete(s.metadata[orgID], pipelineID)
	return nil
}

// MemoryCatalogStore implements the CatalogStore interface using in-memory storage
type MemoryCatalogStore struct {
	streams      map[string]map[string]bool
	functions    map[string]map[string]bool
	destinations map[string]map[string]bool
	mu           sync.RWMutex
}

// NewMemoryCatalogStore creates a new in-memory catalog store
func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{
		streams:      make(map[string]map[string]bool),
		functions:    make(map[string]map[string]bool),
		destinations: make(map[string]map[string]bool),
	}
}

func (s *MemoryCatalogStore) add(set map[string]map[string]bool, orgID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := set[orgID]; !ok {
		set[orgID] = make(map[string]bool)
	}
	set[orgID][name] = true
}

func (s *MemoryCatalogStore) list(set map[string]map[string]bool, orgID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(set[orgID]))
	for name := range set[orgID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListStreams returns all known stream names for an organization
func (s *MemoryCatalogStore) ListStreams(orgID string) ([]string, error) {
	return s.list(s.streams, orgID), nil
}

// AddStream registers a stream name
func (s *MemoryCatalogStore) AddStream(orgID, name string) error {
	s.add(s.streams, orgID, name)
	return nil
}

// ListFunctions returns all processing function names for an organization
func (s *MemoryCatalogStore) ListFunctions(orgID string) ([]string, error) {
	return s.list(s.functions, orgID), nil
}

// AddFunction registers a processing function name
func (s *MemoryCatalogStore) AddFunction(orgID, name string) error {
	s.add(s.functions, orgID, name)
	return nil
}

// ListDestinations returns all remote destination names for an organization
func (s *MemoryCatalogStore) ListDestinations(orgID string) ([]string, error) {
	return s.list(s.destinations, orgID), nil
}

// AddDestination registers a remote destination name
func (s *MemoryCatalogStore) AddDestination(orgID, name string) error {
	s.add(s.destinations, orgID, name)
	return nil
}

// MemoryAccountStore implements the AccountStore interface using in-memory storage
type MemoryAccountStore struct {
	accounts map[string]auth.Account
	mu       sync.RWMutex
}

// NewMemoryAccountStore creates a new in-memory account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]auth.Account),
	}
}

// SaveAccount persists an account
func (s *MemoryAccountStore) SaveAccount(account auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.ID] = account
	return nil
}

// GetAccount retrieves an account by ID
func (s *MemoryAccountStore) GetAccount(accountID string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return auth.Account{}, ErrAccountNotFound
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by username
func (s *MemoryAccountStore) GetAccountByUsername(username string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return auth.Account{}, ErrAccountNotFound
}

// GetAccountByToken retrieves an account by API token
func (s *MemoryAccountStore) GetAccountByToken(token string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.APIToken != "" && account.APIToken == token {
			return account, nil
		}
	}
	return auth.Account{}, ErrAccountNotFound
}

// ListAccounts returns all accounts
func (s *MemoryAccountStore) ListAccounts() ([]auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]auth.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

// DeleteAccount removes an account
func (s *MemoryAccountStore) DeleteAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, accountID)
	return nil
}
