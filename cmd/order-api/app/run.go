package app

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/loihd98/web-ecommerce-sub000/configs"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/cache"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/http"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/http/middleware"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/kafka"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/notify"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/queue"
	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/repo"
	"github.com/loihd98/web-ecommerce-sub000/internal/logging"
	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, nil, err
	}

	logger.Info("order-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	cachedProducts := cache.NewCachedProductRepo(productRepo, rdb, cfg.Cache.ProductTTL, logging.New("product-cache"))
	orderCache := cache.NewRedisOrderCache(rdb, cfg.Cache.StatusTTL)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// use cases
	createUC := usecase.NewCreateOrder(orderRepo, productRepo, idem, outboxRepo, producer)
	statusUC := usecase.NewOrderStatus(orderRepo, orderCache, cfg.TransitionTable())
	queriesUC := usecase.NewOrderQueries(orderRepo)
	catalogUC := usecase.NewCatalogQueries(cachedProducts)

	// register notification consumer on order.created.q
	setupQueue(ch)

	// register payment-result listener
	kafkaCancel, err := setupKafkaListener(cfg, statusUC)
	if err != nil {
		return nil, nil, err
	}

	// handlers + router + middleware
	oh := http.NewOrderHandler(createUC, statusUC, queriesUC)
	catalogH := http.NewCatalogHandler(catalogUC)
	th := http.NewTokenHandler(cfg)
	auth := middleware.NewAuthz(cfg)
	router := http.NewRouter(oh, catalogH, th, auth)

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		_ = rdb.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel) {
	h := queue.NewOrderCreatedHandler(notify.NewLogNotifier(logging.New("notify")))

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.created.q", queue.JSONHandler[usecase.CreatedMsg]{HandleFunc: h.HandleCreate})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, statusUC *usecase.OrderStatus) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	h := kafka.NewPaymentResultHandler(statusUC)
	log := logging.New("kafka")
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.PaymentResultsTopic}, h.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("kafka consumer stopped", "error", err)
		}
	}()
	return cancel, nil
}
