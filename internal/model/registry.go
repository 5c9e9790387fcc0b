package model

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/agentic-research/ifcgraph/api"
	"github.com/agentic-research/ifcgraph/internal/schema"
	"github.com/agentic-research/ifcgraph/internal/store"
)

// ErrUnknownModel means the model id is not in the registry.
var ErrUnknownModel = errors.New("unknown model id")

// Registry owns the open models of one session, keyed by model id. Each
// entry is written once at open and only read afterwards; the lock exists
// for the map, not the models.
type Registry struct {
	mu     sync.RWMutex
	models map[int]*Model
	nextID int
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		models: make(map[int]*Model),
		log:    log,
	}
}

// Open builds a Model over a record source and registers it. The load is
// all-or-nothing: any store failure aborts without registering anything.
func (r *Registry) Open(ctx context.Context, src store.Source, set schema.Set) (*Model, error) {
	m, err := newModel(ctx, src, set)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	m.ID = r.nextID
	r.nextID++
	r.models[m.ID] = m
	r.mu.Unlock()

	r.log.Info("model opened", m.logFields()...)
	return m, nil
}

// Model resolves a model id.
func (r *Registry) Model(id int) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	if !ok {
		return nil, ErrUnknownModel
	}
	return m, nil
}

// Close drops a model from the registry and releases its store.
func (r *Registry) Close(id int) error {
	r.mu.Lock()
	m, ok := r.models[id]
	delete(r.models, id)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownModel
	}
	return m.close()
}

// SpatialStructure is the id-keyed form of Model.SpatialStructure.
func (r *Registry) SpatialStructure(ctx context.Context, modelID int, includeProperties bool) (*api.TreeNode, error) {
	m, err := r.Model(modelID)
	if err != nil {
		return nil, err
	}
	return m.SpatialStructure(ctx, includeProperties)
}

// PropertySets is the id-keyed form of Model.PropertySets.
func (r *Registry) PropertySets(ctx context.Context, modelID int, elementID uint32, recursive bool) ([]*store.Record, error) {
	m, err := r.Model(modelID)
	if err != nil {
		return nil, err
	}
	return m.PropertySets(ctx, elementID, recursive)
}

// TypeProperties is the id-keyed form of Model.TypeProperties.
func (r *Registry) TypeProperties(ctx context.Context, modelID int, elementID uint32, recursive bool) ([]*store.Record, error) {
	m, err := r.Model(modelID)
	if err != nil {
		return nil, err
	}
	return m.TypeProperties(ctx, elementID, recursive)
}

// MaterialsProperties is the id-keyed form of Model.MaterialsProperties.
func (r *Registry) MaterialsProperties(ctx context.Context, modelID int, elementID uint32, recursive bool) ([]*store.Record, error) {
	m, err := r.Model(modelID)
	if err != nil {
		return nil, err
	}
	return m.MaterialsProperties(ctx, elementID, recursive)
}
