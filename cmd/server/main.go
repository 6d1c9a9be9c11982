// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"kanto-ml/internal/catalog"
	"kanto-ml/internal/config"
	"kanto-ml/internal/handler"
	"kanto-ml/internal/inference"
	"kanto-ml/internal/pipeline"
	"kanto-ml/internal/repository"
	"kanto-ml/internal/service"
	"kanto-ml/pkg/database"
	"kanto-ml/pkg/es"
	"kanto-ml/pkg/kafka"
	"kanto-ml/pkg/log"
	"kanto-ml/pkg/storage"
	"kanto-ml/pkg/tasks"
	"kanto-ml/pkg/token"
)

func main() {
	// 0. 读取 .env（不存在则忽略）
	_ = godotenv.Load()

	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// 3. 加载模型、编码器和数据集，任何一步失败都无法提供服务
	if storage.IsRemote(cfg.Model.Path) || storage.IsRemote(cfg.Dataset.Path) {
		if err := storage.InitMinIO(cfg.MinIO); err != nil {
			log.Fatal("MinIO 初始化失败", err)
		}
	}

	modelBytes, err := storage.ReadArtifact(rootCtx, cfg.Model.Path)
	if err != nil {
		log.Fatal("读取模型制品失败", err)
	}
	scorer, err := inference.LoadDenseModel(modelBytes)
	if err != nil {
		log.Fatal("解析模型制品失败", err)
	}
	log.Infof("模型加载成功: %s, 输入维度 %d, 输出维度 %d", scorer.Name(), scorer.InputDim(), scorer.OutputDim())

	encoder, err := inference.NewCityEncoder(cfg.Encoder.Cities, cfg.Encoder.Length)
	if err != nil {
		log.Fatal("城市编码器配置错误", err)
	}

	datasetBytes, err := storage.ReadArtifact(rootCtx, cfg.Dataset.Path)
	if err != nil {
		log.Fatal("读取数据集失败", err)
	}
	cat, err := catalog.Load(cfg.Dataset.Path, datasetBytes, cfg.Dataset.Sheet)
	if err != nil {
		log.Fatal("解析数据集失败", err)
	}
	log.Infof("数据集加载成功, 共 %d 条景点", cat.Len())

	// 4. 初始化存储
	if err := repository.ValidateDriver(cfg.Store.Driver); err != nil {
		log.Fatal("存储驱动配置错误", err)
	}
	var (
		destRepo    repository.DestinationRepository
		mongoClient *mongo.Client
	)
	switch cfg.Store.Driver {
	case repository.DriverMongo:
		client, coll, err := database.InitMongo(rootCtx, cfg.Database.Mongo)
		if err != nil {
			log.Fatal("MongoDB 初始化失败", err)
		}
		mongoClient = client
		destRepo = repository.NewMongoDestinationRepository(coll)
	case repository.DriverElasticsearch:
		esClient, err := es.InitES(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("Elasticsearch 初始化失败", err)
		}
		destRepo = repository.NewESDestinationRepository(esClient, cfg.Elasticsearch.IndexName)
	case repository.DriverMySQL:
		db, err := database.InitMySQL(cfg.Database.MySQL.DSN)
		if err != nil {
			log.Fatal("MySQL 初始化失败", err)
		}
		destRepo = repository.NewGormDestinationRepository(db)
	}

	// 5. 可选的 Redis：预测缓存与任务重试计数
	var (
		rdb   *redis.Client
		cache repository.PredictionCache
	)
	if cfg.Database.Redis.Addr != "" {
		rdb, err = database.InitRedis(rootCtx, cfg.Database.Redis)
		if err != nil {
			log.Warnf("Redis 不可用，预测缓存已禁用: %v", err)
		} else if cfg.Database.Redis.PredictionTTLSeconds > 0 {
			ttl := time.Duration(cfg.Database.Redis.PredictionTTLSeconds) * time.Second
			cache = repository.NewPredictionCache(rdb, ttl)
		}
	}

	// 6. 同步管道：有 broker 时走 Kafka，否则在进程内执行
	processor := pipeline.NewProcessor(cat, destRepo)
	var publisher service.TaskPublisher
	if cfg.Kafka.Brokers != "" {
		kafka.InitProducer(cfg.Kafka)
		defer kafka.CloseProducer()
		go kafka.StartConsumer(rootCtx, cfg.Kafka, processor, rdb)
		publisher = service.TaskPublisherFunc(kafka.ProduceSyncTask)
	} else {
		log.Info("未配置 Kafka，同步任务将在进程内执行")
		publisher = service.TaskPublisherFunc(func(ctx context.Context, task tasks.CatalogSyncTask) error {
			return processor.Process(ctx, task)
		})
	}

	// 7. 初始化 Service
	recService, err := service.NewRecommendationService(encoder, scorer, cat, cache)
	if err != nil {
		log.Fatal("推荐服务初始化失败", err)
	}
	destService := service.NewDestinationService(destRepo, publisher)

	var jwtManager *token.JWTManager
	if cfg.JWT.AdminEnabled() {
		jwtManager = token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	} else {
		log.Warnf("jwt.secret 未设置或为占位值，/sync_destinations 已禁用")
	}

	// 8. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(
		handler.NewRecommendationHandler(recService),
		handler.NewDestinationHandler(destService),
		jwtManager,
	)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 停止 Kafka 消费者
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Errorf("断开 MongoDB 连接失败: %v", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	log.Info("服务已优雅关闭")
}
