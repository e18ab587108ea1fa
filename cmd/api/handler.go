package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authUsecase "remind-candles/internal/auth/usecase"
	birthdayUsecase "remind-candles/internal/birthday/usecase"
	wishUsecase "remind-candles/internal/wish/usecase"
	"remind-candles/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler owns the HTTP surface and the use cases behind it
type Handler struct {
	config          *config.Config
	log             *zap.Logger
	authUsecase     authUsecase.AuthUsecase
	birthdayUsecase birthdayUsecase.BirthdayUsecase
	wishUsecase     wishUsecase.WishUsecase
	notifications   NotificationService
	wisher          Wisher
}

func NewHandler(cfg *config.Config, log *zap.Logger, authUc authUsecase.AuthUsecase, birthdayUc birthdayUsecase.BirthdayUsecase, wishUc wishUsecase.WishUsecase, notifications NotificationService, wisher Wisher) *Handler {
	return &Handler{
		config:          cfg,
		log:             log.Named("http"),
		authUsecase:     authUc,
		birthdayUsecase: birthdayUc,
		wishUsecase:     wishUc,
		notifications:   notifications,
		wisher:          wisher,
	}
}

// Router builds the gin engine with middleware and all routes
func (h *Handler) Router() *gin.Engine {
	if h.config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log), cors())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupRoutes(r, h)
	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down gracefully
func (h *Handler) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := c.GetString("userID"); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
