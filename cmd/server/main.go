package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tabl/internal/config"
	"tabl/internal/handlers"
	"tabl/internal/identity"
	"tabl/internal/middleware"
	"tabl/internal/repositories/remote"
	"tabl/internal/services"
	"tabl/pkg/cache"
	"tabl/pkg/database"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
	"tabl/pkg/maps"
	"tabl/pkg/storage"
	"tabl/pkg/websocket"
	"tabl/routes"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Caller:  cfg.Logging.Caller,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var (
		fb       *database.Firebase
		docs     docstore.Store
		verifier identity.TokenVerifier
	)

	if cfg.Firebase.DocumentStore == config.DocumentStoreFirestore || cfg.Storage.Provider == config.StorageFirebase {
		var err error
		fb, err = database.NewFirebase(ctx, &database.FirebaseConfig{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			StorageBucket:   cfg.Firebase.StorageBucket,
		})
		if err != nil {
			return err
		}
		defer fb.Close()
	}

	if cfg.Firebase.DocumentStore == config.DocumentStoreFirestore {
		docs = docstore.NewFirestoreStore(fb.Firestore)
		verifier = identity.NewFirebaseVerifier(fb.Auth)
	} else {
		if config.IsProduction() {
			return errors.New("the memory document store is not available in production")
		}
		log.Warn("Using the in-memory document store and unverified tokens")
		docs = docstore.NewMemoryStore()
		verifier = identity.InsecureVerifier{}
	}

	blobs, err := newStorageProvider(ctx, cfg, fb)
	if err != nil {
		return err
	}

	policy := identity.AdminPolicy{
		Emails:        cfg.Security.AdminEmails,
		Domain:        cfg.Security.AdminDomain,
		NameHeuristic: cfg.Security.AdminNameHeuristic && !config.IsProduction(),
	}
	ident := identity.ContextProvider{}

	clubRepo := remote.NewVenueRepository(docs, log)
	reviewRepo := remote.NewReviewRepository(docs, ident, log)
	photoRepo := remote.NewPhotoRepository(docs, blobs, ident, cfg.Storage.URLExpiry, log)
	userRepo := remote.NewUserRepository(docs, ident, log)

	upgrader := websocket.NewUpgrader(websocket.Config{
		ReadBufferSize:    cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:   cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout:  cfg.WebSocket.HandshakeTimeout,
		PingInterval:      cfg.WebSocket.PingInterval,
		PongTimeout:       cfg.WebSocket.PongTimeout,
		WriteTimeout:      cfg.WebSocket.WriteTimeout,
		EnableCompression: cfg.WebSocket.EnableCompression,
		AllowedOrigins:    cfg.WebSocket.AllowedOrigins,
	}, log)

	h := &routes.Handlers{
		Health:    handlers.NewHealthHandler(cfg.App.Version),
		Clubs:     handlers.NewClubHandler(clubRepo, log),
		Reviews:   handlers.NewReviewHandler(clubRepo, reviewRepo, policy, log),
		Photos:    handlers.NewPhotoHandler(clubRepo, photoRepo, cfg.Storage.MaxUploadBytes, cfg.Storage.MaxPhotoPixels, log),
		Favorites: handlers.NewFavoritesHandler(docs, clubRepo, upgrader, log),
		Profile:   handlers.NewProfileHandler(userRepo, policy),
	}

	if cfg.Maps.Enabled() {
		provider, err := newPlacesProvider(cfg.Maps)
		if err != nil {
			return err
		}
		places := services.NewPlaceService(provider, log)
		if cfg.Redis.Enabled() {
			redisCache, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
				Host:         cfg.Redis.Host,
				Port:         cfg.Redis.Port,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
				KeyPrefix:    cfg.Redis.KeyPrefix,
			})
			if err != nil {
				return err
			}
			defer redisCache.Close()
			places = services.NewCachedPlaceService(places, redisCache, cfg.Redis.PlaceTTL, log)
		}
		h.Places = handlers.NewPlaceHandler(places)
	} else {
		log.Warn("No maps credentials configured, place lookup disabled")
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	if cfg.Storage.Provider == config.StorageLocal {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	routes.SetupRoutes(router, h, verifier, policy, log)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newStorageProvider(ctx context.Context, cfg *config.Config, fb *database.Firebase) (storage.StorageProvider, error) {
	switch cfg.Storage.Provider {
	case config.StorageFirebase:
		return storage.NewFirebaseStorage(ctx, fb.App, cfg.Firebase.StorageBucket)
	case config.StorageS3:
		return storage.NewAWSS3Storage(ctx, cfg.Storage.AWS.Region, cfg.Storage.AWS.Bucket, cfg.Storage.AWS.CDNDomain)
	case config.StorageCloudinary:
		return storage.NewCloudinaryStorage(cfg.Storage.Cloudinary.URL, cfg.Storage.Cloudinary.Folder)
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.Storage.Local.BasePath, cfg.Storage.Local.BaseURL)
	default:
		return storage.NewMemoryStorage(cfg.Storage.Local.BaseURL), nil
	}
}

func newPlacesProvider(cfg *config.MapsConfig) (maps.PlacesProvider, error) {
	if cfg.Provider == "mapbox" {
		return maps.NewMapboxProvider(cfg.Mapbox.AccessToken), nil
	}
	return maps.NewGoogleMapsProvider(cfg.GoogleMaps.APIKey)
}
