// Package storage provides interfaces for persistent storage.
package storage

import (
	"errors"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// Errors returned by storage providers
var (
	ErrPipelineNotFound = errors.New("pipeline not found")
	ErrAccountNotFound  = errors.New("account not found")
)

// StorageProvider defines the interface for persistence backends
type StorageProvider interface {
	// Initialize sets up the storage backend
	Initialize() error

	// Close cleans up resources
	Close() error

	// GetPipelineStore returns a store for pipeline definitions
	GetPipelineStore() PipelineStore

	// GetCatalogStore returns a store for streams, functions and destinations
	GetCatalogStore() CatalogStore

	// GetAccountStore returns a store for account data
	GetAccountStore() AccountStore
}

// PipelineStore manages pipeline definition persistence. Definitions are
// stored as canonical JSON documents keyed by organization and pipeline ID.
type PipelineStore interface {
	// SavePipeline persists a pipeline definition
	SavePipeline(orgID, pipelineID string, definition []byte) error

	// GetPipeline retrieves a pipeline definition
	GetPipeline(orgID, pipelineID string) ([]byte, error)

	// ListPipelines returns all pipeline IDs for an organization
	ListPipelines(orgID string) ([]string, error)

	// GetPipelineMetadata retrieves metadata for a pipeline
	GetPipelineMetadata(orgID, pipelineID string) (pipeline.Metadata, error)

	// ListPipelinesWithMetadata returns all pipelines with metadata for an organization
	ListPipelinesWithMetadata(orgID string) ([]pipeline.Metadata, error)

	// DeletePipeline removes a pipeline definition
	DeletePipeline(orgID, pipelineID string) error
}

// CatalogStore manages the reference lists validation runs against: known
// streams, available processing functions, configured remote destinations.
type CatalogStore interface {
	// ListStreams returns all known stream names for an organization
	ListStreams(orgID string) ([]string, error)

	// AddStream registers a stream name
	AddStream(orgID, name string) error

	// ListFunctions returns all processing function names for an organization
	ListFunctions(orgID string) ([]string, error)

	// AddFunction registers a processing function name
	AddFunction(orgID, name string) error

	// ListDestinations returns all remote destination names for an organization
	ListDestinations(orgID string) ([]string, error)

	// AddDestination registers a remote destination name
	AddDestination(orgID, name string) error
}

// AccountStore manages account persistence
type AccountStore interface {
	// SaveAccount persists an account
	SaveAccount(account auth.Account) error

	// GetAccount retrieves an account by ID
	GetAccount(accountID string) (auth.Account, error)

	// GetAccountByUsername retrieves an account by username
	GetAccountByUsername(username string) (auth.Account, error)

	// GetAccountByToken retrieves an account by API token
	GetAccountByToken(token string) (auth.Account, error)

	// ListAccounts returns all accounts
	ListAccounts() ([]auth.Account, error)

	// DeleteAccount removes an account
	DeleteAccount(accountID string) error
}
