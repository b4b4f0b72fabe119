package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/storage"
)

func TestAccountService_CreateAccount(t *testing.T) {
	service := NewAccountService(storage.NewMemoryAccountStore())

	t.Run("successful creation", func(t *testing.T) {
		accountID, err := service.CreateAccount("testuser", "testpassword")
		require.NoError(t, err)
		assert.NotEmpty(t, accountID)

		account, err := service.GetAccount(accountID)
		require.NoError(t, err)
		assert.Equal(t, "testuser", account.Username)
		assert.NotEmpty(t, account.PasswordHash)
		assert.NotEmpty(t, account.APIToken)
		assert.False(t, account.CreatedAt.IsZero())

		// Password is stored hashed
		assert.NotEqual(t, "testpassword", account.PasswordHash)
		err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("testpassword"))
		assert.NoError(t, err)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := service.CreateAccount("", "password")
		assert.Error(t, err)

		_, err = service.CreateAccount("username", "")
		assert.Error(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := service.CreateAccount("duplicate", "password")
		require.NoError(t, err)

		_, err = service.CreateAccount("duplicate", "password")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "username already exists")
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	service := NewAccountService(storage.NewMemoryAccountStore())

	accountID, err := service.CreateAccount("testuser", "testpassword")
	require.NoError(t, err)

	t.Run("successful authentication", func(t *testing.T) {
		got, err := service.Authenticate("testuser", "testpassword")
		require.NoError(t, err)
		assert.Equal(t, accountID, got)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate("testuser", "wrongpassword")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authentication failed")
	})

	t.Run("non-existent username", func(t *testing.T) {
		_, err := service.Authenticate("nonexistent", "testpassword")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authentication failed")
	})
}

func TestAccountService_ValidateToken(t *testing.T) {
	service := NewAccountService(storage.NewMemoryAccountStore())

	accountID, err := service.CreateAccount("testuser", "testpassword")
	require.NoError(t, err)

	account, err := service.GetAccount(accountID)
	require.NoError(t, err)

	got, err := service.ValidateToken(account.APIToken)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)

	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)

	_, err = service.ValidateToken("")
	assert.Error(t, err)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	service := NewAccountService(storage.NewMemoryAccountStore())

	accountID, err := service.CreateAccount("testuser", "testpassword")
	require.NoError(t, err)

	require.NoError(t, service.DeleteAccount(accountID))

	_, err = service.GetAccount(accountID)
	assert.Error(t, err)

	assert.Error(t, service.DeleteAccount(accountID))
	assert.Error(t, service.DeleteAccount(""))
}

func TestAccountService_ListAccounts(t *testing.T) {
	service := NewAccountService(storage.NewMemoryAccountStore())

	_, err := service.CreateAccount("alice", "password")
	require.NoError(t, err)
	_, err = service.CreateAccount("bob", "password")
	require.NoError(t, err)

	accounts, err := service.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	usernames := []string{accounts[0].Username, accounts[1].Username}
	assert.Contains(t, usernames, "alice")
	assert.Contains(t, usernames, "bob")
	for _, account := range accounts {
		assert.IsType(t, auth.Account{}, account)
	}
}
