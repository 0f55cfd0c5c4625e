package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdeev-dev/fulfillment-service/internal/app"
	"github.com/avdeev-dev/fulfillment-service/internal/carrier"
	"github.com/avdeev-dev/fulfillment-service/internal/config"
	"github.com/avdeev-dev/fulfillment-service/internal/handler"
	"github.com/avdeev-dev/fulfillment-service/internal/notifier"
	"github.com/avdeev-dev/fulfillment-service/internal/payment"
	"github.com/avdeev-dev/fulfillment-service/internal/postgres"
	"github.com/avdeev-dev/fulfillment-service/internal/ratelimit"
	"github.com/avdeev-dev/fulfillment-service/internal/redis"
	"github.com/avdeev-dev/fulfillment-service/internal/repo"
	"github.com/avdeev-dev/fulfillment-service/internal/service"
	"github.com/avdeev-dev/fulfillment-service/pkg/trm"

	_ "github.com/avdeev-dev/fulfillment-service/docs"
	"github.com/joho/godotenv"
)

// @title           Fulfillment Service API
// @version         1.0
// @description     Order checkout, lifecycle and shipping rate API
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	redisClient, err := redis.New(ctx, conf.Redis)
	panicIfErr("failed to connect to redis", err)
	defer redisClient.Close()
	logger.Info("redis connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	carrierClient := carrier.New(conf.Carrier)
	paymentClient := payment.New(conf.Payment)
	notifierClient := notifier.New(conf.Notifier)

	shippingService := service.NewShippingService(logger, carrierClient, conf.Carrier)
	dispatcher := service.NewNotificationDispatcher(logger, orderRepo, notifierClient, conf.Notifier.NotifyOnCancel)
	lifecycleService := service.NewLifecycleService(logger, orderRepo, dispatcher)
	checkoutService := service.NewCheckoutService(
		logger, txManager, orderRepo,
		shippingService, paymentClient,
		conf.Payment, conf.Shipping,
		dispatcher,
	)

	limiter := ratelimit.New(logger, ratelimit.NewRedisStore(redisClient))
	limiter.Register(handler.ActionPasswordReset, ratelimit.Rule{
		Limit:    conf.RateLimit.PasswordResetLimit,
		Window:   conf.RateLimit.PasswordResetWindow,
		FailMode: ratelimit.FailClosed,
	})
	limiter.Register(handler.ActionAdminCreate, ratelimit.Rule{
		Limit:    conf.RateLimit.AdminCreateLimit,
		Window:   conf.RateLimit.AdminCreateWindow,
		FailMode: ratelimit.FailOpen,
	})

	httpHandler := handler.NewHTTPHandler(logger, handler.Deps{
		Checkout: checkoutService,
		Orders:   lifecycleService,
		Shipping: shippingService,
		Limiter:  limiter,
		Integrations: map[string]handler.Integration{
			"carrier":  carrierClient,
			"payment":  paymentClient,
			"notifier": notifierClient,
		},
		AdminToken: conf.AdminToken,
	})
	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, lifecycleService)
	handler.RegisterMetrics()

	app := app.New(logger, conf)
	app.SetHTTPHandlers(httpHandler)
	app.SetConsumers(kafkaHandler)

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
