package cli

import (
	"log"

	"barapp/config"
	httpapi "barapp/order-svc/internal/api/http"
	"barapp/order-svc/internal/broker"
	"barapp/order-svc/internal/hub"
	"barapp/order-svc/internal/metrics"
	"barapp/order-svc/internal/service"
	"barapp/order-svc/internal/storage"

	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API, WebSocket hub and analytics consumers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd, cfg, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not create missing tables on startup")

	return cmd
}

func serve(cmd *cobra.Command, cfg *config.Config, skipMigrations bool) error {
	ctx := cmd.Context()

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	if !skipMigrations {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}
	}

	reg := metrics.NewRegistry()
	orders := storage.NewPostgresRepository(db)
	records := storage.NewBusinessRepository(db)

	var leaderboard service.Leaderboard
	if cfg.RedisEnabled() {
		client := config.MustInitRedis(cfg)
		defer client.Close()
		leaderboard = storage.NewRedisLeaderboard(client, cfg.LeaderboardTTL)
	} else {
		log.Println("WARNING: REDIS_HOST not set, today's top items are read from the database")
	}

	var publisher service.BusinessPublisher
	if cfg.KafkaEnabled() {
		writer := config.NewKafkaWriter(cfg)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)

		if leaderboard != nil {
			reader := config.NewKafkaReader(cfg)
			defer reader.Close()
			go service.NewConsumer(reader, leaderboard).Start(ctx)
		}
	}

	terminals := hub.New(cfg.WSSendBuffer, reg)
	defer terminals.Close()

	var channel service.Channel = terminals
	if cfg.RabbitMQEnabled() {
		conn, ch, err := broker.Connect(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer conn.Close()
		defer ch.Close()

		relay := broker.NewRelay(terminals, ch)
		deliveries, err := broker.Subscribe(ctx, ch)
		if err != nil {
			log.Fatal("Failed to subscribe to notifications:", err)
		}
		go relay.Consume(ctx, deliveries)
		channel = relay
		log.Printf("[order-svc] notification relay joined %s as %s", broker.Exchange, relay.InstanceID)
	}

	notifier := service.NewNotifier(channel, reg)
	business := service.NewBusinessService(records, publisher, leaderboard, reg)
	orderService := service.NewOrderService(service.OrderServiceDeps{
		Orders:   orders,
		Workers:  orders,
		Business: business,
		Notifier: notifier,
		QR:       service.DefaultQRGenerator{BaseURL: cfg.QRBaseURL},
		Metrics:  reg,
	})

	handler := httpapi.NewHandler(orderService, business, terminals, reg.Handler())
	return httpapi.StartServer(ctx, cfg.HTTPAddr, httpapi.NewRouter(handler), cfg.ShutdownTimeout)
}
