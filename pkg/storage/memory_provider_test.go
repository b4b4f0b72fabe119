package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/pipeliner/pkg/auth"
)

func TestMemoryPipelineStore(t *testing.T) {
	provider := NewMemoryProvider()
	require.NoError(t, provider.Initialize())
	defer provider.Close()

	store := provider.GetPipelineStore()

	definition := []byte(`{
		"name": "error-router",
		"description": "Routes error logs to a dedicated stream",
		"source": {"org_id": "org1", "source_type": "realtime"}
	}`)

	// Save and retrieve
	err := store.SavePipeline("org1", "p1", definition)
	require.NoError(t, err)

	got, err := store.GetPipeline("org1", "p1")
	require.NoError(t, err)
	assert.Equal(t, definition, got)

	// Metadata is extracted from the definition
	meta, err := store.GetPipelineMetadata("org1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", meta.ID)
	assert.Equal(t, "org1", meta.OrgID)
	assert.Equal(t, "error-router", meta.Name)
	assert.Equal(t, "Routes error logs to a dedicated stream", meta.Description)
	assert.Equal(t, "realtime", meta.SourceType)
	assert.NotZero(t, meta.CreatedAt)

	// Listing
	require.NoError(t, store.SavePipeline("org1", "p2", []byte(`{"name": "second"}`)))
	require.NoError(t, store.SavePipeline("org2", "other", []byte(`{"name": "other"}`)))

	ids, err := store.ListPipelines("org1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	metas, err := store.ListPipelinesWithMetadata("org1")
	require.NoError(t, err)
	assert.Len(t, metas, 2)

	// Updates preserve creation time
	created := meta.CreatedAt
	require.NoError(t, store.SavePipeline("org1", "p1", []byte(`{"name": "renamed"}`)))
	meta, err = store.GetPipelineMetadata("org1", "p1")
	require.NoError(t, err)
	assert.Equal(t, created, meta.CreatedAt)
	assert.Equal(t, "renamed", meta.Name)

	// Delete
	require.NoError(t, store.DeletePipeline("org1", "p1"))
	_, err = store.GetPipeline("org1", "p1")
	assert.ErrorIs(t, err, ErrPipelineNotFound)

	err = store.DeletePipeline("org1", "missing")
	assert.ErrorIs(t, err, ErrPipelineNotFound)
}

func TestMemoryPipelineStoreIsolatesReturnedDefinitions(t *testing.T) {
	store := NewMemoryPipelineStore()

	require.NoError(t, store.SavePipeline("org1", "p1", []byte(`{"name": "orig"}`)))

	got, err := store.GetPipeline("org1", "p1")
	require.NoError(t, err)
	got[2] = 'X'

	again, err := store.GetPipeline("org1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name": "orig"}`), again)
}

func TestMemoryCatalogStore(t *testing.T) {
	store := NewMemoryCatalogStore()

	require.NoError(t, store.AddStream("org1", "app_logs"))
	require.NoError(t, store.AddStream("org1", "error_logs"))
	require.NoError(t, store.AddStream("org1", "app_logs")) // duplicate is a no-op
	require.NoError(t, store.AddFunction("org1", "redact_pii"))
	require.NoError(t, store.AddDestination("org1", "backup_cluster"))

	streams, err := store.ListStreams("org1")
	require.NoError(t, err)
	assert.Equal(t, []string{"app_logs", "error_logs"}, streams)

	functions, err := store.ListFunctions("org1")
	require.NoError(t, err)
	assert.Equal(t, []string{"redact_pii"}, functions)

	destinations, err := store.ListDestinations("org1")
	require.NoError(t, err)
	assert.Equal(t, []string{"backup_cluster"}, destinations)

	// Organizations are isolated
	streams, err = store.ListStreams("org2")
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestMemoryAccountStore(t *testing.T) {
	store := NewMemoryAccountStore()

	account := auth.Account{
		ID:           "acc1",
		Username:     "testuser",
		PasswordHash: "hash",
		APIToken:     "token123",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, store.SaveAccount(account))

	got, err := store.GetAccount("acc1")
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.Username)

	got, err = store.GetAccountByUsername("testuser")
	require.NoError(t, err)
	assert.Equal(t, "acc1", got.ID)

	got, err = store.GetAccountByToken("token123")
	require.NoError(t, err)
	assert.Equal(t, "acc1", got.ID)

	accounts, err := store.ListAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	_, err = store.GetAccount("missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = store.GetAccountByUsername("missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = store.GetAccountByToken("missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	require.NoError(t, store.DeleteAccount("acc1"))
	_, err = store.GetAccount("acc1")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, store.DeleteAccount("acc1"), ErrAccountNotFound)
}
