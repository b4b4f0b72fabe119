package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// DynamoDBProvider implements the StorageProvider interface using DynamoDB
type DynamoDBProvider struct {
	client        dynamodbiface.DynamoDBAPI
	pipelineStore *DynamoDBPipelineStore
	catalogStore  *DynamoDBCatalogStore
	accountStore  *DynamoDBAccountStore
	tablePrefix   string
}

// DynamoDBProviderConfig contains configuration for the DynamoDB provider
type DynamoDBProviderConfig struct {
	Region      string
	AccessKey   string
	SecretKey   string
	TablePrefix string
	Endpoint    string // Optional, for local DynamoDB
}

// NewDynamoDBProvider creates a new DynamoDB storage provider
func NewDynamoDBProvider(config DynamoDBProviderConfig) (*DynamoDBProvider, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}

	if config.AccessKey != "" && config.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		)
	}

	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewDynamoDBProviderWithClient(dynamodb.New(sess), config.TablePrefix), nil
}

// NewDynamoDBProviderWithClient creates a new DynamoDB storage provider with a custom client.
// This is primarily used for testing with mock clients.
func NewDynamoDBProviderWithClient(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBProvider {
	return &DynamoDBProvider{
		client:        client,
		tablePrefix:   tablePrefix,
		pipelineStore: NewDynamoDBPipelineStore(client, tablePrefix),
		catalogStore:  NewDynamoDBCatalogStore(client, tablePrefix),
		accountStore:  NewDynamoDBAccountStore(client, tablePrefix),
	}
}

// Initialize sets up the storage backend
func (p *DynamoDBProvider) Initialize() error {
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
func (p *DynamoDBProvider) Close() error {
	// Nothing to close for DynamoDB client
	return nil
}

// GetPipelineStore returns a store for pipeline definitions
func (p *DynamoDBProvider) GetPipelineStore() PipelineStore {
	return p.pipelineStore
}

// GetCatalogStore returns a store for streams, functions and destinations
func (p *DynamoDBProvider) GetCatalogStore() CatalogStore {
	return p.catalogStore
}

// GetAccountStore returns a store for account data
func (p *DynamoDBProvider) GetAccountStore() AccountStore {
	return p.accountStore
}

// ensureTable creates a DynamoDB table if it does not already exist and waits
// for it to become active.
func ensureTable(client dynamodbiface.DynamoDBAPI, input *dynamodb.CreateTableInput) error {
	_, err := client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: input.TableName,
	})
	if err == nil {
		return nil
	}

	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeResourceNotFoundException {
		if _, err := client.CreateTable(input); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}

		err = client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
			TableName: input.TableName,
		})
		if err != nil {
			return fmt.Errorf("failed to wait for table creation: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to check if table exists: %w", err)
}

// DynamoDBPipelineStore implements the PipelineStore interface using DynamoDB
type DynamoDBPipelineStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBPipelineStore creates a new DynamoDB pipeline store
func NewDynamoDBPipelineStore(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBPipelineStore {
	return &DynamoDBPipelineStore{
		client:    client,
		tableName: tablePrefix + "pipelines",
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (s *DynamoDBPipelineStore) Initialize() error {
	return ensureTable(s.client, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("OrgID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("PipelineID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("OrgID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("PipelineID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
}

// dynamoDBPipelineItem represents a pipeline item in DynamoDB
type dynamoDBPipelineItem struct {
	OrgID       string `json:"OrgID"`
	PipelineID  string `json:"PipelineID"`
	Definition  string `json:"Definition"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	SourceType  string `json:"SourceType"`
	CreatedAt   int64  `json:"CreatedAt"`
	UpdatedAt   int64  `json:"UpdatedAt"`
}

func (i dynamoDBPipelineItem) metadata() pipeline.Metadata {
	return pipeline.Metadata{
		ID:          i.PipelineID,
		OrgID:       i.OrgID,
		Name:        i.Name,
		Description: i.Description,
		SourceType:  i.SourceType,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// SavePipeline persists a pipeline definition
func (s *DynamoDBPipelineStore) SavePipeline(orgID, pipelineID string, definition []byte) error {
	meta := extractMetadata(orgID, pipelineID, definition)
	now := time.Now().Unix()

	item := dynamoDBPipelineItem{
		OrgID:       orgID,
		PipelineID:  pipelineID,
		Definition:  string(definition),
		Name:        meta.Name,
		Description: meta.Description,
		SourceType:  meta.SourceType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Preserve the creation time on update
	result, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       pipelineKey(orgID, pipelineID),
	})
	if err != nil {
		return fmt.Errorf("failed to check if pipeline exists: %w", err)
	}
	if result.Item != nil {
		var existing dynamoDBPipelineItem
		if err := dynamodbattribute.UnmarshalMap(result.Item, &existing); err != nil {
			return fmt.Errorf("failed to unmarshal existing pipeline: %w", err)
		}
		item.CreatedAt = existing.CreatedAt
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline item: %w", err)
	}

	if _, err := s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}

	return nil
}

// GetPipeline retrieves a pipeline definition
func (s *DynamoDBPipelineStore) GetPipeline(orgID, pipelineID string) ([]byte, error) {
	result, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       pipelineKey(orgID, pipelineID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}
	if result.Item == nil {
		return nil, ErrPipelineNotFound
	}

	var item dynamoDBPipelineItem
	if err := dynamodbattribute.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pipeline item: %w", err)
	}

	return []byte(item.Definition), nil
}

// ListPipelines returns all pipeline IDs for an organization
func (s *DynamoDBPipelineStore) ListPipelines(orgID string) ([]string, error) {
	keyCond := expression.Key("OrgID").Equal(expression.Value(orgID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(&dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query pipelines: %w", err)
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if id := item["PipelineID"]; id != nil && id.S != nil {
			ids = append(ids, *id.S)
		}
	}
	return ids, nil
}

// GetPipelineMetadata retrieves metadata for a pipeline
func (s *DynamoDBPipelineStore) GetPipelineMetadata(orgID, pipelineID string) (pipeline.Metadata, error) {
	result, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       pipelineKey(orgID, pipelineID),
	})
	if err != nil {
		return pipeline.Metadata{}, fmt.Errorf("failed to get pipeline metadata: %w", err)
	}
	if result.Item == nil {
		return pipeline.Metadata{}, ErrPipelineNotFound
	}

	var item dynamoDBPipelineItem
	if err := dynamodbattribute.UnmarshalMap(result.Item, &item); err != nil {
		return pipeline.Metadata{}, fmt.Errorf("failed to unmarshal pipeline item: %w", err)
	}

	return item.metadata(), nil
}

// ListPipelinesWithMetadata returns all pipelines with metadata for an organization
func (s *DynamoDBPipelineStore) ListPipelinesWithMetadata(orgID string) ([]pipeline.Metadata, error) {
	keyCond := expression.Key("OrgID").Equal(expression.Value(orgID))
	proj := expression.NamesList(
		expression.Name("PipelineID"),
		expression.Name("OrgID"),
		expression.Name("Name"),
		expression.Name("Description"),
		expression.Name("SourceType"),
		expression.Name("CreatedAt"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(&dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ProjectionExpression:      expr.Projection(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query pipelines: %w", err)
	}

	metas := make([]pipeline.Metadata, 0, len(result.Items))
	for _, raw := range result.Items {
		var item dynamoDBPipelineItem
		if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pipeline item: %w", err)
		}
		metas = append(metas, item.metadata())
	}
	return metas, nil
}

// DeletePipeline removes a pipeline definition
func (s *DynamoDBPipelineStore) DeletePipeline(orgID, pipelineID string) error {
	_, err := s.client.DeleteItem(&dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 pipelineKey(orgID, pipelineID),
		ConditionExpression: aws.String("attribute_exists(OrgID) AND attribute_exists(PipelineID)"),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return ErrPipelineNotFound
		}
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}
	return nil
}

func pipelineKey(orgID, pipelineID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"OrgID": {
			S: aws.String(orgID),
		},
		"PipelineID": {
			S: aws.String(pipelineID),
		},
	}
}

// DynamoDBCatalogStore implements the CatalogStore interface using DynamoDB.
// Entries share a table with a composite sort key of the form "kind#name".
type DynamoDBCatalogStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBCatalogStore creates a new DynamoDB catalog store
func NewDynamoDBCatalogStore(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBCatalogStore {
	return &DynamoDBCatalogStore{
		client:    client,
		tableName: tablePrefix + "catalog",
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (s *DynamoDBCatalogStore) Initialize() error {
	return ensureTable(s.client, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("OrgID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("EntryKey"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("OrgID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("EntryKey"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
}

func (s *DynamoDBCatalogStore) list(orgID, kind string) ([]string, error) {
	keyCond := expression.Key("OrgID").Equal(expression.Value(orgID)).
		And(expression.Key("EntryKey").BeginsWith(kind + "#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(&dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s entries: %w", kind, err)
	}

	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if key := item["EntryKey"]; key != nil && key.S != nil {
			names = append(names, strings.TrimPrefix(*key.S, kind+"#"))
		}
	}
	return names, nil
}

func (s *DynamoDBCatalogStore) add(orgID, kind, name string) error {
	_, err := s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]*dynamodb.AttributeValue{
			"OrgID": {
				S: aws.String(orgID),
			},
			"EntryKey": {
				S: aws.String(kind + "#" + name),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add %s entry: %w", kind, err)
	}
	return nil
}

// ListStreams returns all known stream names for an organization
func (s *DynamoDBCatalogStore) ListStreams(orgID string) ([]string, error) {
	return s.list(orgID, "stream")
}

// AddStream registers a stream name
func (s *DynamoDBCatalogStore) AddStream(orgID, name string) error {
	return s.add(orgID, "stream", name)
}

// ListFunctions returns all processing function names for an organization
func (s *DynamoDBCatalogStore) ListFunctions(orgID string) ([]string, error) {
	return s.list(orgID, "function")
}

// AddFunction registers a processing function name
func (s *DynamoDBCatalogStore) AddFunction(orgID, name string) error {
	return s.add(orgID, "function", name)
}

// ListDestinations returns all remote destination names for an organization
func (s *DynamoDBCatalogStore) ListDestinations(orgID string) ([]string, error) {
	return s.list(orgID, "destination")
}

// AddDestination registers a remote destination name
func (s *DynamoDBCatalogStore) AddDestination(orgID, name string) error {
	return s.add(orgID, "destination", name)
}

// DynamoDBAccountStore implements the AccountStore interface using DynamoDB
type DynamoDBAccountStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBAccountStore creates a new DynamoDB account store
func NewDynamoDBAccountStore(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBAccountStore {
	return &DynamoDBAccountStore{
		client:    client,
		tableName: tablePrefix + "accounts",
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (s *DynamoDBAccountStore) Initialize() error {
	return ensureTable(s.client, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("ID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("Username"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("APIToken"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("ID"),
				KeyType:       aws.String("HASH"),
			},
		},
		GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
			{
				IndexName: aws.String("UsernameIndex"),
				KeySchema: []*dynamodb.KeySchemaElement{
					{
						AttributeName: aws.String("Username"),
						KeyType:       aws.String("HASH"),
					},
				},
				Projection: &dynamodb.Projection{
					ProjectionType: aws.String("ALL"),
				},
			},
			{
				IndexName: aws.String("TokenIndex"),
				KeySchema: []*dynamodb.KeySchemaElement{
					{
						AttributeName: aws.String("APIToken"),
						KeyType:       aws.String("HASH"),
					},
				},
				Projection: &dynamodb.Projection{
					ProjectionType: aws.String("ALL"),
				},
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
}

// dynamoDBAccountItem carries credential fields that the API-facing account
// struct deliberately hides from JSON.
type dynamoDBAccountItem struct {
	ID           string `json:"ID"`
	Username     string `json:"Username"`
	PasswordHash string `json:"PasswordHash"`
	APIToken     string `json:"APIToken"`
	CreatedAt    int64  `json:"CreatedAt"`
	UpdatedAt    int64  `json:"UpdatedAt"`
}

func (i dynamoDBAccountItem) account() auth.Account {
	return auth.Account{
		ID:           i.ID,
		Username:     i.Username,
		PasswordHash: i.PasswordHash,
		APIToken:     i.APIToken,
		CreatedAt:    time.Unix(i.CreatedAt, 0),
		UpdatedAt:    time.Unix(i.UpdatedAt, 0),
	}
}

// SaveAccount persists an account
func (s *DynamoDBAccountStore) SaveAccount(account auth.Account) error {
	item := dynamoDBAccountItem{
		ID:           account.ID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		APIToken:     account.APIToken,
		CreatedAt:    account.CreatedAt.Unix(),
		UpdatedAt:    account.UpdatedAt.Unix(),
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if _, err := s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account
func (s *DynamoDBAccountStore) GetAccount(accountID string) (auth.Account, error) {
	result, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"ID": {
				S: aws.String(accountID),
			},
		},
	})
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	if result.Item == nil {
		return auth.Account{}, ErrAccountNotFound
	}

	var item dynamoDBAccountItem
	if err := dynamodbattribute.UnmarshalMap(result.Item, &item); err != nil {
		return auth.Account{}, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return item.account(), nil
}

func (s *DynamoDBAccountStore) queryIndex(indexName, keyName, keyValue string) (auth.Account, error) {
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(&dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return auth.Account{}, fmt.Errorf("failed to query accounts: %w", err)
	}
	if len(result.Items) == 0 {
		return auth.Account{}, ErrAccountNotFound
	}

	var item dynamoDBAccountItem
	if err := dynamodbattribute.UnmarshalMap(result.Items[0], &item); err != nil {
		return auth.Account{}, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return item.account(), nil
}

// GetAccountByUsername retrieves an account by username
func (s *DynamoDBAccountStore) GetAccountByUsername(username string) (auth.Account, error) {
	return s.queryIndex("UsernameIndex", "Username", username)
}

// GetAccountByToken retrieves an account by API token
func (s *DynamoDBAccountStore) GetAccountByToken(token string) (auth.Account, error) {
	return s.queryIndex("TokenIndex", "APIToken", token)
}

// ListAccounts returns all accounts
func (s *DynamoDBAccountStore) ListAccounts() ([]auth.Account, error) {
	result, err := s.client.Scan(&dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	accounts := make([]auth.Account, 0, len(result.Items))
	for _, raw := range result.Items {
		var item dynamoDBAccountItem
		if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account: %w", err)
		}
		accounts = append(accounts, item.account())
	}
	return accounts, nil
}

// DeleteAccount removes an account
func (s *DynamoDBAccountStore) DeleteAccount(accountID string) error {
	_, err := s.client.DeleteItem(&dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"ID": {
				S: aws.String(accountID),
			},
		},
		ConditionExpression: aws.String("attribute_exists(ID)"),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
