package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/app_setting"
	"github.com/Luismorlan/rambagiza/chat"
	"github.com/Luismorlan/rambagiza/engine"
	"github.com/Luismorlan/rambagiza/engine/modules"
	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/file_store"
	"github.com/Luismorlan/rambagiza/oauth"
	"github.com/Luismorlan/rambagiza/payment"
	"github.com/Luismorlan/rambagiza/presence"
	"github.com/Luismorlan/rambagiza/server"
	"github.com/Luismorlan/rambagiza/server/middlewares"
	"github.com/Luismorlan/rambagiza/social"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/Luismorlan/rambagiza/utils/dotenv"
	"github.com/Luismorlan/rambagiza/utils/flag"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const (
	localUploadDir  = "uploads"
	shutdownTimeout = 10 * time.Second

	limiterCleanupInterval = 10 * time.Minute
	limiterMaxIdle         = time.Hour
)

// Configuration to customize binary startup.
var AppSetting app_setting.ServerAppSetting

func cleanup() {
	if dotenv.IsProdEnv() {
		utils.CloseProfiler()
		utils.CloseTracer()
	}
	Logger.Log.Info("web server shutdown")
}

func NewDogStatsdClient() statsd.ClientInterface {
	addr := os.Getenv("STATSD_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8125"
	}
	client, err := statsd.New(addr)
	if err != nil {
		panic(err)
	}
	return client
}

// NewSessionStore connects to redis. Development runs without REDIS_HOST keep
// sessions in memory.
func NewSessionStore(ctx context.Context, ttl time.Duration) utils.SessionStore {
	if os.Getenv("REDIS_HOST") == "" && !dotenv.IsProdEnv() {
		Logger.Log.Warn("REDIS_HOST is not set, sessions are kept in memory")
		return utils.NewMemorySessionStore()
	}
	store, err := utils.GetRedisSessionStore(ctx, ttl)
	if err != nil {
		Logger.Log.Fatal("fail to connect to redis: ", err)
	}
	return store
}

// NewObjectStore uploads to S3 when S3_BUCKET is set, to a local folder
// otherwise. The folder is returned so it can be served.
func NewObjectStore() (file_store.ObjectStore, string) {
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := file_store.NewS3FileStore(os.Getenv("AWS_REGION"), bucket, os.Getenv("S3_PUBLIC_URL_PREFIX"))
		if err != nil {
			Logger.Log.Fatal("fail to create s3 file store: ", err)
		}
		return store, ""
	}
	store, err := file_store.NewLocalFileStore(localUploadDir, "/uploads")
	if err != nil {
		Logger.Log.Fatal("fail to create local file store: ", err)
	}
	return store, store.FolderName()
}

func main() {
	flag.ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Pick up the service name and env loaded above.
	Logger.InitLogger()
	if dotenv.IsProdEnv() {
		utils.StartTracer()
		utils.StartProfiler()
	}
	defer cleanup()

	AppSetting = app_setting.ParseServerAppSetting(*flag.AppSettingPath)

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("fail to connect to database: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	ctx, cancel := context.WithCancel(context.Background())
	eventbus := events.NewEventBus()
	sessionTTL := time.Duration(AppSetting.SESSION_TTL_SECOND) * time.Second

	accounts := account.NewService(db)
	walletService := wallet.NewService(db, eventbus)
	hub := presence.NewHub(accounts)
	objectStore, uploadDir := NewObjectStore()

	srv := &server.Server{
		Accounts: accounts,
		Social:   social.NewService(db, eventbus, AppSetting.POSTS_PER_PAGE),
		Chat:     chat.NewService(db, walletService, eventbus),
		Wallet:   walletService,
		Gateway:  payment.NewStripeGateway(os.Getenv("STRIPE_SECRET_KEY")),
		Store:    objectStore,
		OAuth:    oauth.NewProvidersFromEnv(),
		Hub:      hub,
		Sessions: &middlewares.Sessions{
			Store:  NewSessionStore(ctx, sessionTTL),
			Users:  accounts,
			TTL:    sessionTTL,
			Secure: dotenv.IsProdEnv(),
		},
		Setting:              AppSetting,
		ChatLimiter:          middlewares.NewRateLimiter(AppSetting.CHAT_POSTS_PER_SECOND, AppSetting.CHAT_POSTS_BURST),
		LoginLimiter:         middlewares.NewRateLimiter(AppSetting.LOGIN_ATTEMPTS_PER_SECOND, AppSetting.LOGIN_BURST),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		ContactWebhookUrl:    os.Getenv("SLACK_CONTACT_WEBHOOK_URL"),
		LocalUploadDir:       uploadDir,
	}

	srv.ChatLimiter.StartCleanup(ctx, limiterCleanupInterval, limiterMaxIdle)
	srv.LoginLimiter.StartCleanup(ctx, limiterCleanupInterval, limiterMaxIdle)

	// Initialize all engine modules here.
	engineModules := []engine.Module{
		// Notifier pushes live notices to the pages of online users.
		modules.NewNotifier(modules.NotifierConfig{Name: "notifier"}, hub, eventbus),
		// Reporter counts domain events in datadog for monitoring purpose.
		modules.NewReporter(modules.ReporterConfig{Name: "reporter"}, NewDogStatsdClient(), eventbus),
	}
	e := engine.NewEngine(engineModules, ctx, cancel, eventbus)
	e.Start()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*flag.ServiceName))
	srv.SetupRouter(router)

	httpServer := &http.Server{Addr: AppSetting.LISTEN_ADDR, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Log.Fatal("web server stopped: ", err)
		}
	}()
	Logger.Log.Infof("web server starts up on %s", AppSetting.LISTEN_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		Logger.Log.Error("fail to shutdown web server gracefully: ", err)
	}
	e.Shutdown()
}
