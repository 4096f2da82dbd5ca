package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/internal/config"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/analyzing"
)

// ModelTrainingSyncConfig representa a configuração do agendador de retreinamento do modelo
type ModelTrainingSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// ModelTrainingSyncStatus é o snapshot do estado do agendador exposto pela API
type ModelTrainingSyncStatus struct {
	Enabled             bool       `json:"enabled"`
	CronSchedule        string     `json:"cron_schedule"`
	Running             bool       `json:"running"`
	LastRunStartedAt    *time.Time `json:"last_run_started_at,omitempty"`
	LastRunCompletedAt  *time.Time `json:"last_run_completed_at,omitempty"`
	LastRunError        string     `json:"last_run_error,omitempty"`
	LastTrainingSamples int        `json:"last_training_samples"`
}

// ModelTrainingSyncService gerencia o agendamento e execução do retreinamento do modelo de previsão
type ModelTrainingSyncService struct {
	scheduler *gocron.Scheduler
	config    ModelTrainingSyncConfig
	analyzer  analyzing.Analyzer

	syncRunning         bool
	syncMutex           sync.Mutex
	lastRunStartedAt    time.Time
	lastRunCompletedAt  time.Time
	lastRunError        string
	lastTrainingSamples int
}

// NewModelTrainingSyncService cria uma nova instância do serviço de retreinamento agendado
func NewModelTrainingSyncService(analyzer analyzing.Analyzer, appConfig *config.Config) *ModelTrainingSyncService {
	trainingConfig := ModelTrainingSyncConfig{
		CronSchedule: appConfig.ModelTrainingSync.CronSchedule,
		SyncEnabled:  appConfig.ModelTrainingSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": trainingConfig.CronSchedule,
		"sync_enabled":  trainingConfig.SyncEnabled,
	}).Info("Configuração do agendador de retreinamento do modelo carregada")

	return &ModelTrainingSyncService{
		scheduler: scheduler,
		config:    trainingConfig,
		analyzer:  analyzer,
	}
}

// Start inicia o agendador
func (s *ModelTrainingSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Retreinamento agendado do modelo desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de retreinamento do modelo")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.RunTraining()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar retreinamento do modelo: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de retreinamento do modelo")
		s.scheduler.Stop()
	}()

	return nil
}

// RunTraining executa um ciclo de retreinamento. Execuções concorrentes são
// descartadas: só um treino por vez.
func (s *ModelTrainingSyncService) RunTraining() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Retreinamento do modelo já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastRunStartedAt = time.Now()
	s.syncMutex.Unlock()

	startTime := time.Now()
	logrus.Info("Iniciando retreinamento do modelo de previsão")

	metadata, err := s.analyzer.Train()

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastRunCompletedAt = time.Now()
	if err != nil {
		s.lastRunError = err.Error()
	} else {
		s.lastRunError = ""
		s.lastTrainingSamples = metadata.Samples
	}
	s.syncMutex.Unlock()

	if err != nil {
		logrus.WithError(err).Error("Erro no retreinamento do modelo de previsão")
		return
	}

	logrus.WithFields(logrus.Fields{
		"samples":     metadata.Samples,
		"invoices":    metadata.InvoiceCount,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Retreinamento do modelo de previsão concluído")
}

// Status retorna o snapshot atual do agendador
func (s *ModelTrainingSyncService) Status() ModelTrainingSyncStatus {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := ModelTrainingSyncStatus{
		Enabled:             s.config.SyncEnabled,
		CronSchedule:        s.config.CronSchedule,
		Running:             s.syncRunning,
		LastRunError:        s.lastRunError,
		LastTrainingSamples: s.lastTrainingSamples,
	}
	if !s.lastRunStartedAt.IsZero() {
		startedAt := s.lastRunStartedAt
		status.LastRunStartedAt = &startedAt
	}
	if !s.lastRunCompletedAt.IsZero() {
		completedAt := s.lastRunCompletedAt
		status.LastRunCompletedAt = &completedAt
	}
	return status
}
