package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App               App               `mapstructure:",squash"`
	Server            Server            `mapstructure:",squash"`
	Database          Database          `mapstructure:",squash"`
	Analytics         Analytics         `mapstructure:",squash"`
	SyntheticBackfill SyntheticBackfill `mapstructure:",squash"`
	ModelTrainingSync ModelTrainingSync `mapstructure:",squash"`
	SecretKey         string            `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Analytics struct {
	// TargetMonths é a janela mensal da série de treino.
	TargetMonths int `mapstructure:"analytics_target_months"`
	// ForecastMonths é o horizonte padrão do predict.
	ForecastMonths int    `mapstructure:"analytics_forecast_months"`
	ModelDir       string `mapstructure:"analytics_model_dir"`
	TopProducts    int    `mapstructure:"analytics_top_products"`
	TopCustomers   int    `mapstructure:"analytics_top_customers"`
}

type SyntheticBackfill struct {
	Enabled     bool    `mapstructure:"synthetic_backfill_enabled"`
	MinInvoices int     `mapstructure:"synthetic_backfill_min_invoices"`
	MaxInvoices int     `mapstructure:"synthetic_backfill_max_invoices"`
	BaseAmount  float64 `mapstructure:"synthetic_backfill_base_amount"`
}

type ModelTrainingSync struct {
	CronSchedule string `mapstructure:"model_training_sync_cron"`
	Enabled      bool   `mapstructure:"model_training_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/commerce")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("ANALYTICS_TARGET_MONTHS", 24)  // Janela de 24 meses para o treino
	viper.SetDefault("ANALYTICS_FORECAST_MONTHS", 6) // Horizonte padrão de previsão
	viper.SetDefault("ANALYTICS_MODEL_DIR", "./data/models")
	viper.SetDefault("ANALYTICS_TOP_PRODUCTS", 20)
	viper.SetDefault("ANALYTICS_TOP_CUSTOMERS", 8)

	viper.SetDefault("SYNTHETIC_BACKFILL_ENABLED", true)
	viper.SetDefault("SYNTHETIC_BACKFILL_MIN_INVOICES", 4)
	viper.SetDefault("SYNTHETIC_BACKFILL_MAX_INVOICES", 12)
	viper.SetDefault("SYNTHETIC_BACKFILL_BASE_AMOUNT", 900.0)

	viper.SetDefault("MODEL_TRAINING_SYNC_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	viper.SetDefault("MODEL_TRAINING_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
