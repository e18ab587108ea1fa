package main

import (
	"context"
	"errors"
	"fmt"

	api "remind-candles/cmd/api"
	authdomain "remind-candles/internal/auth/domain"
	authRepo "remind-candles/internal/auth/repository"
	authUsecase "remind-candles/internal/auth/usecase"
	birthdaydomain "remind-candles/internal/birthday/domain"
	birthdayRepo "remind-candles/internal/birthday/repository"
	birthdayUsecase "remind-candles/internal/birthday/usecase"
	"remind-candles/internal/notification"
	notificationdomain "remind-candles/internal/notification/domain"
	notificationRepo "remind-candles/internal/notification/repository"
	"remind-candles/internal/notification/scheduler"
	wishdomain "remind-candles/internal/wish/domain"
	wishRepo "remind-candles/internal/wish/repository"
	wishUsecase "remind-candles/internal/wish/usecase"
	"remind-candles/internal/wishing"
	"remind-candles/pkg/config"
	"remind-candles/pkg/database"
	"remind-candles/pkg/email"
	"remind-candles/pkg/fcm"
	"remind-candles/pkg/whatsapp"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// app holds the wired services of one process
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	handler       *api.Handler
	notifications *notification.Service
	scheduler     *scheduler.DailyScheduler
	bus           *notification.PubSubBus

	closers []func() error
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.PushToken{},
		&birthdaydomain.Birthday{},
		&wishdomain.WishTemplate{},
		&wishdomain.WishDelivery{},
		&notificationdomain.NotificationSettings{},
		&notificationdomain.ReminderLog{},
	); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	return build(ctx, &app{cfg: cfg, log: log})
}

// build wires a; on failure everything opened so far is closed
func build(ctx context.Context, a *app) (*app, error) {
	if err := a.init(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	a.db = db
	a.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	// Firebase powers push, Google sign-in and the optional Firestore token store
	var (
		fbApp    *firebase.App
		push     notification.PushSender
		verifier authUsecase.IDTokenVerifier
	)
	if cfg.FirebaseCredentials != "" {
		fbApp, err = fcm.NewApp(ctx, cfg.FirebaseCredentials)
		if err != nil {
			return err
		}
		if client, err := fcm.NewClient(ctx, fbApp, log); err != nil {
			log.Warn("push notifications disabled", zap.Error(err))
		} else {
			client.SetLinkBase(cfg.AppURL)
			push = client
		}
		if authClient, err := fbApp.Auth(ctx); err != nil {
			log.Warn("google sign-in disabled", zap.Error(err))
		} else {
			verifier = authClient
		}
	} else {
		log.Warn("FIREBASE_CREDENTIALS not set, push notifications and google sign-in disabled")
	}

	userRepository := authRepo.NewUserRepository(db)
	var tokenRepository authRepo.PushTokenRepository
	switch cfg.TokenStore {
	case "firestore":
		var fsClient *firestore.Client
		fsClient, err = fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("failed to open firestore: %w", err)
		}
		a.onClose(fsClient.Close)
		tokenRepository = authRepo.NewFirestoreTokenRepository(fsClient, userRepository)
		log.Info("push tokens stored in firestore")
	default:
		tokenRepository = authRepo.NewPushTokenRepository(db)
	}

	birthdayRepository := birthdayRepo.NewGormBirthdayRepository(db)
	wishRepository := wishRepo.NewGormWishRepository(db)
	deliveryRepository := wishRepo.NewGormDeliveryRepository(db)
	settingsRepository := notificationRepo.NewGormSettingsRepository(db)
	reminderRepository := notificationRepo.NewGormReminderLogRepository(db)

	authUc := authUsecase.NewAuthUsecase(userRepository, tokenRepository, verifier, cfg, log)
	birthdayUc := birthdayUsecase.NewBirthdayUsecase(birthdayRepository, cfg.Location, log)
	wishUc := wishUsecase.NewWishUsecase(wishRepository, deliveryRepository, log)

	a.notifications = notification.NewService(
		userRepository,
		birthdayRepository,
		settingsRepository,
		reminderRepository,
		tokenRepository,
		push,
		cfg.Location,
		log,
	)

	// Wish channels
	var guard wishing.Guard
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, wishes deduplicated in memory", zap.Error(err))
			_ = rdb.Close()
		} else {
			a.onClose(rdb.Close)
			guard = wishing.NewRedisGuard(rdb)
		}
	}

	mailer, err := email.NewSender(ctx, cfg)
	switch {
	case errors.Is(err, email.ErrNotConfigured):
		log.Info("email channel disabled")
	case err != nil:
		log.Warn("email channel disabled", zap.Error(err))
		mailer = nil
	default:
		log.Info("email channel enabled", zap.String("provider", mailer.Name()))
	}

	wa := whatsapp.NewClient(whatsapp.Config{
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.WhatsAppAccessToken,
		APIVersion:    cfg.WhatsAppAPIVersion,
	})

	channels := wishing.BuildChannels(cfg.WishChannels, a.notifications, wa, mailer, log)
	wisher := wishing.NewService(channels, guard, wishUc, cfg.Location, log)
	a.notifications.SetWishDispatcher(wisher)

	if cfg.GoogleProjectID != "" {
		bus, err := notification.NewPubSubBus(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, cfg.FirebaseCredentials, log)
		if err != nil {
			return err
		}
		a.onClose(bus.Close)
		a.bus = bus
		a.notifications.SetPublisher(bus)
		log.Info("birthday events routed through pubsub", zap.String("topic", cfg.PubSubTopic))
	}

	a.scheduler = scheduler.NewDailyScheduler(a.notifications, cfg.CheckHour, cfg.CheckMinute, cfg.Location, log)
	a.handler = api.NewHandler(cfg, log, authUc, birthdayUc, wishUc, a.notifications, wisher)
	return nil
}

// serve runs the HTTP server, the scheduler and the event receiver until ctx is done
// or one of them fails.
func (a *app) serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.handler.Serve(gctx, ":"+a.cfg.Port)
	})
	g.Go(func() error {
		return a.scheduler.Run(gctx)
	})
	if a.bus != nil {
		g.Go(func() error {
			return a.bus.Receive(gctx, a.notifications.HandleReceivedEvent)
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		a.log.Info("shutdown complete")
		return nil
	}
	return err
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
}
