package modelstore

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// MemoryStore é um Store em memória para testes.
type MemoryStore struct {
	mu       sync.RWMutex
	model    *domain.RegressionModel
	metadata *domain.ModelMetadata
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Exists() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil, nil
}

func (s *MemoryStore) LoadModel() (*domain.RegressionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, errors.New("nenhum modelo treinado disponível")
	}
	model := *s.model
	return &model, nil
}

func (s *MemoryStore) SaveModel(model *domain.RegressionModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *model
	s.model = &copied
	return nil
}

func (s *MemoryStore) LoadMetadata() (*domain.ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metadata == nil {
		return nil, errors.New("nenhum metadado de modelo disponível")
	}
	metadata := *s.metadata
	return &metadata, nil
}

func (s *MemoryStore) SaveMetadata(metadata *domain.ModelMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *metadata
	s.metadata = &copied
	return nil
}
