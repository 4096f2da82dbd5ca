package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// stubAnalyzer implementa analyzing.Analyzer para os testes do agendador.
type stubAnalyzer struct {
	mu         sync.Mutex
	trainCalls int
	trainErr   error
	metadata   *domain.ModelMetadata
	block      chan struct{}
}

func (s *stubAnalyzer) Train() (*domain.ModelMetadata, error) {
	s.mu.Lock()
	s.trainCalls++
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if s.trainErr != nil {
		return nil, s.trainErr
	}
	return s.metadata, nil
}

func (s *stubAnalyzer) Predict(months int) (*domain.ForecastResult, error) {
	return nil, nil
}

func (s *stubAnalyzer) HistoricalBreakdown(limitProducts, limitCustomers int) (*domain.HistoricalBreakdown, error) {
	return nil, nil
}

func (s *stubAnalyzer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trainCalls
}

func newTestSyncService(analyzer *stubAnalyzer) *ModelTrainingSyncService {
	return &ModelTrainingSyncService{
		config: ModelTrainingSyncConfig{
			CronSchedule: "0 3 * * *",
			SyncEnabled:  true,
		},
		analyzer: analyzer,
	}
}

func TestRunTrainingAtualizaStatus(t *testing.T) {
	analyzer := &stubAnalyzer{metadata: &domain.ModelMetadata{Samples: 24}}
	service := newTestSyncService(analyzer)

	service.RunTraining()

	status := service.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, "0 3 * * *", status.CronSchedule)
	assert.False(t, status.Running)
	assert.NotNil(t, status.LastRunStartedAt)
	assert.NotNil(t, status.LastRunCompletedAt)
	assert.Empty(t, status.LastRunError)
	assert.Equal(t, 24, status.LastTrainingSamples)
	assert.Equal(t, 1, analyzer.calls())
}

func TestRunTrainingRegistraErro(t *testing.T) {
	analyzer := &stubAnalyzer{trainErr: errors.New("banco indisponível")}
	service := newTestSyncService(analyzer)

	service.RunTraining()

	status := service.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "banco indisponível", status.LastRunError)
	assert.Equal(t, 0, status.LastTrainingSamples)
}

func TestRunTrainingDescartaExecucaoConcorrente(t *testing.T) {
	analyzer := &stubAnalyzer{
		metadata: &domain.ModelMetadata{Samples: 12},
		block:    make(chan struct{}),
	}
	service := newTestSyncService(analyzer)

	done := make(chan struct{})
	go func() {
		service.RunTraining()
		close(done)
	}()

	// Espera o primeiro treino tomar o lock de execução.
	assert.Eventually(t, func() bool {
		return service.Status().Running
	}, time.Second, 5*time.Millisecond)

	// A segunda chamada retorna imediatamente sem treinar de novo.
	service.RunTraining()
	assert.Equal(t, 1, analyzer.calls())

	close(analyzer.block)
	<-done

	status := service.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 12, status.LastTrainingSamples)
}

func TestStatusAntesDaPrimeiraExecucao(t *testing.T) {
	service := newTestSyncService(&stubAnalyzer{})

	status := service.Status()
	assert.False(t, status.Running)
	assert.Nil(t, status.LastRunStartedAt)
	assert.Nil(t, status.LastRunCompletedAt)
}
