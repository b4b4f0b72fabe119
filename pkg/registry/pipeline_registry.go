package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/streamhub/pipeliner/pkg/loader"
	"github.com/streamhub/pipeliner/pkg/pipeline"
	"github.com/streamhub/pipeliner/pkg/storage"
	"github.com/streamhub/pipeliner/pkg/validation"
)

// Errors returned by the pipeline registry
var (
	ErrInvalidDefinition = errors.New("invalid pipeline definition")
	ErrValidationFailed  = errors.New("pipeline validation failed")
)

// PipelineRegistryService implements the PipelineRegistry interface
type PipelineRegistryService struct {
	pipelineStore storage.PipelineStore
	catalogStore  storage.CatalogStore
	loader        loader.DefinitionLoader
}

// PipelineRegistryOptions contains options for creating a pipeline registry
type PipelineRegistryOptions struct {
	// Loader parses definition documents. Defaults to the standard loader.
	Loader loader.DefinitionLoader
}

// NewPipelineRegistry creates a new pipeline registry service
func NewPipelineRegistry(pipelineStore storage.PipelineStore, catalogStore storage.CatalogStore, options PipelineRegistryOptions) PipelineRegistry {
	l := options.Loader
	if l == nil {
		l = loader.NewLoader()
	}
	return &PipelineRegistryService{
		pipelineStore: pipelineStore,
		catalogStore:  catalogStore,
		loader:        l,
	}
}

// Create validates and stores a new pipeline definition
func (r *PipelineRegistryService) Create(orgID string, content string) (string, error) {
	p, err := r.loader.Parse([]byte(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := r.loader.Validate([]byte(content)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if p.ID == "" {
		p.ID = pipeline.NewPipelineID()
	}

	ctx, err := r.buildContext(orgID, "")
	if err != nil {
		return "", err
	}

	result := validation.Validate(p, ctx)
	if !result.Valid {
		return "", fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(result.Errors, "; "))
	}

	canonical, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode pipeline: %w", err)
	}

	if err := r.pipelineStore.SavePipeline(orgID, p.ID, canonical); err != nil {
		return "", fmt.Errorf("failed to save pipeline: %w", err)
	}

	return p.ID, nil
}

// Get retrieves a pipeline definition by ID
func (r *PipelineRegistryService) Get(orgID string, id string) (string, error) {
	definition, err := r.pipelineStore.GetPipeline(orgID, id)
	if err != nil {
		return "", fmt.Errorf("failed to get pipeline: %w", err)
	}
	return string(definition), nil
}

// List returns metadata for all pipelines of an organization
func (r *PipelineRegistryService) List(orgID string) ([]pipeline.Info, error) {
	metas, err := r.pipelineStore.ListPipelinesWithMetadata(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}

	infos := make([]pipeline.Info, len(metas))
	for i, meta := range metas {
		infos[i] = pipeline.Info{
			ID:          meta.ID,
			OrgID:       meta.OrgID,
			Name:        meta.Name,
			Description: meta.Description,
			SourceType:  meta.SourceType,
			CreatedAt:   time.Unix(meta.CreatedAt, 0),
			UpdatedAt:   time.Unix(meta.UpdatedAt, 0),
		}
	}
	return infos, nil
}

// Update validates and replaces an existing pipeline definition
func (r *PipelineRegistryService) Update(orgID string, id string, content string) error {
	if _, err := r.pipelineStore.GetPipeline(orgID, id); err != nil {
		return fmt.Errorf("failed to get pipeline: %w", err)
	}

	p, err := r.loader.Parse([]byte(content))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := r.loader.Validate([]byte(content)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	p.ID = id

	ctx, err := r.buildContext(orgID, id)
	if err != nil {
		return err
	}

	result := validation.Validate(p, ctx)
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(result.Errors, "; "))
	}

	canonical, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pipeline: %w", err)
	}

	if err := r.pipelineStore.SavePipeline(orgID, id, canonical); err != nil {
		return fmt.Errorf("failed to update pipeline: %w", err)
	}
	return nil
}

// Delete removes a pipeline definition
func (r *PipelineRegistryService) Delete(orgID string, id string) error {
	if err := r.pipelineStore.DeletePipeline(orgID, id); err != nil {
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}
	return nil
}

// Validate checks a definition without persisting it
func (r *PipelineRegistryService) Validate(orgID string, pipelineID string, content string) (validation.Result, error) {
	p, err := r.loader.Parse([]byte(content))
	if err != nil {
		return validation.Result{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if pipelineID != "" {
		p.ID = pipelineID
	}

	ctx, err := r.buildContext(orgID, pipelineID)
	if err != nil {
		return validation.Result{}, err
	}

	return validation.Validate(p, ctx), nil
}

// buildContext assembles the reference lists a validation run needs from the
// catalog and from the organization's other pipelines. excludeID names the
// pipeline being re-validated so its own stream claims don't count against it.
func (r *PipelineRegistryService) buildContext(orgID string, excludeID string) (*validation.Context, error) {
	streams, err := r.catalogStore.ListStreams(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	functions, err := r.catalogStore.ListFunctions(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	destinations, err := r.catalogStore.ListDestinations(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	usedStreams, err := r.collectUsedStreams(orgID, excludeID)
	if err != nil {
		return nil, err
	}

	ctx := &validation.Context{
		StreamList:    streams,
		UsedStreams:   usedStreams,
		Functions:     functions,
		Destinations:  destinations,
		SelectedOrgID: orgID,
	}

	if excludeID != "" {
		original, err := r.loadPipeline(orgID, excludeID)
		if err == nil {
			ctx.OriginalPipeline = original
		}
	}

	return ctx, nil
}

// collectUsedStreams gathers input stream names claimed by every other
// pipeline in the organization. Definitions that no longer decode are skipped
// rather than blocking validation of unrelated pipelines.
func (r *PipelineRegistryService) collectUsedStreams(orgID string, excludeID string) ([]string, error) {
	ids, err := r.pipelineStore.ListPipelines(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}

	seen := make(map[string]bool)
	used := make([]string, 0)
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		p, err := r.loadPipeline(orgID, id)
		if err != nil {
			continue
		}
		for _, name := range p.InputStreamNames() {
			if !seen[name] {
				seen[name] = true
				used = append(used, name)
			}
		}
	}
	sort.Strings(used)
	return used, nil
}

func (r *PipelineRegistryService) loadPipeline(orgID string, id string) (*pipeline.Pipeline, error) {
	definition, err := r.pipelineStore.GetPipeline(orgID, id)
	if err != nil {
		return nil, err
	}

	var p pipeline.Pipeline
	if err := json.Unmarshal(definition, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
