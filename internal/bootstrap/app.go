package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/laguagu/rag-chatbot/internal/config"
	"github.com/laguagu/rag-chatbot/internal/logger"
	"github.com/laguagu/rag-chatbot/internal/model"
	mysqlClient "github.com/laguagu/rag-chatbot/internal/platform/mysql"
	rabbitmqClient "github.com/laguagu/rag-chatbot/internal/platform/rabbitmq"
	redisClient "github.com/laguagu/rag-chatbot/internal/platform/redis"
	"github.com/laguagu/rag-chatbot/internal/repository"
	"github.com/laguagu/rag-chatbot/internal/worker"
)

// App owns process-lifetime resources. Request-scoped wiring happens in the
// transport layer.
type App struct {
	Config           *config.Config
	Log              *slog.Logger
	MySQL            *gorm.DB
	Redis            *redis.Client
	MQConn           *amqp.Connection
	TranscriptWorker *worker.TranscriptPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Chunk{}, &model.Transcript{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	transcriptRepo := repository.NewTranscriptRepository(mysqlDB)
	transcriptWorker := worker.NewTranscriptPersistWorker(mqConn, transcriptRepo, cfg.RabbitMQ.TranscriptPersistQueue, log)
	if err := transcriptWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start transcript worker failed: %w", err)
	}

	return &App{
		Config:           cfg,
		Log:              log,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		TranscriptWorker: transcriptWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.TranscriptWorker != nil {
		a.TranscriptWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
