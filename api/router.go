// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"bitwise74/zeropass/config"
	"bitwise74/zeropass/db"
	"bitwise74/zeropass/middleware"
	"bitwise74/zeropass/security"
	"bitwise74/zeropass/service"
	"bitwise74/zeropass/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Creds    *security.Credentials
	Sessions *security.Sessions
	Identity *service.Identity
	Quota    *service.Quota
	Uploads  *service.Uploads
	Notify   service.Notifier
}

func NewRouter() (*API, error) {
	a := &API{
		Notify: service.Sender{},
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Creds = security.NewCredentials(db)
	a.Sessions = security.NewSessions([]byte(viper.GetString("jwt.secret")))
	a.Identity = service.NewIdentity(db)
	a.Quota = service.NewQuota(db, viper.GetInt64("storage.max_usage"))

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(a.Sessions, a.Identity)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a bearer token
		main.HEAD("/validate", jwt, a.Validate)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/mail/request	-> Emails a one-time login link
		auth.POST("/mail/request", a.AuthMailRequest)

		// GET /api/auth/mail/verify	-> Redeems a login link for a bearer token
		auth.GET("/mail/verify", a.AuthMailVerify)

		// POST /api/auth/otp/request	-> Sends a one-time login code via SMS
		auth.POST("/otp/request", a.AuthOtpRequest)

		// POST /api/auth/otp/verify	-> Redeems a login code for a bearer token
		auth.POST("/otp/verify", a.AuthOtpVerify)
	}

	files := main.Group("/files", jwt)
	{
		// GET /api/files		-> Returns the caller's files, newest first
		files.GET("", a.FileList)

		// POST /api/files		-> Uploads a new file and stores it in the database
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/usage		-> Returns the caller's storage usage
		files.GET("/usage", cachePerUser(30), a.FileUsage)
	}

	blobs, err := storage.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	a.Uploads = service.NewUploads(db, blobs, a.Quota)

	if config.SweepOnStart() {
		n, err := a.Creds.SweepExpired()
		if err != nil {
			return nil, fmt.Errorf("failed to sweep expired tokens, %w", err)
		}

		zap.L().Info("Swept expired tokens", zap.Int64("deleted", n))
	}

	service.SweepLoop(time.Hour, a.Creds)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// cachePerUser caches responses keyed by the authenticated user, not
// just the URI. Routes behind the JWT middleware serve per-user data,
// a URI-only key would hand one user's body to everyone else until
// the TTL runs out.
func cachePerUser(sec int) gin.HandlerFunc {
	return cache.Cache(store, time.Second*time.Duration(sec), cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
		return true, cache.Strategy{
			CacheKey: c.GetString("userID") + ":" + c.Request.RequestURI,
		}
	}))
}
