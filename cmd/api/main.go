package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/commerce-insights-api/infrastructure/modelstore"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository"
	"github.com/vfg2006/commerce-insights-api/internal/api"
	"github.com/vfg2006/commerce-insights-api/internal/config"
	"github.com/vfg2006/commerce-insights-api/internal/scheduler"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/analyzing"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/auditing"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/authenticating"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/generating"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/reporting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	invoiceRepo := repository.NewInvoiceRepository(pgConn)
	productRepo := repository.NewProductRepository(pgConn)
	auditRepo := repository.NewAuditRepository(pgConn)

	store, err := modelstore.NewFilesystemStore(cfg.Analytics.ModelDir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar o diretório do modelo")
	}

	authenticator := authenticating.NewService(userRepo, cfg)
	auditor := auditing.NewService(auditRepo)

	var backfill analyzing.BackfillEnsurer
	if cfg.SyntheticBackfill.Enabled {
		backfill = generating.NewGenerator(cfg, pgConn, invoiceRepo, productRepo, userRepo)
	}

	analyzer := analyzing.NewService(cfg, invoiceRepo, productRepo, store, backfill)
	reporter := reporting.NewService(invoiceRepo, productRepo)

	// Inicializa o agendador de retreinamento do modelo
	modelTrainingSyncService := scheduler.NewModelTrainingSyncService(analyzer, cfg)

	if err := modelTrainingSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de retreinamento do modelo")
	} else {
		logrus.Info("Agendador de retreinamento do modelo iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		analyzer,
		reporter,
		authenticator,
		auditor,
		modelTrainingSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
