package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/config"
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
	"ProvinceMap-App/internal/handler"
	"ProvinceMap-App/internal/infrastructure/cache"
	"ProvinceMap-App/internal/infrastructure/database"
	"ProvinceMap-App/internal/infrastructure/maps"
	"ProvinceMap-App/internal/logger"
	"ProvinceMap-App/internal/metrics"
	infraRepo "ProvinceMap-App/internal/repository"
	"ProvinceMap-App/internal/usecase"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// datasets はデータセットとサーバー側検索の取得元
type datasets interface {
	repository.DatasetRepository
	repository.SearchRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	if !cfg.DotEnvLoaded {
		log.Warn().Msg(".envファイルが見つかりません。環境変数を使用します")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("サーバーが異常終了しました")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	source, closer, err := openDatasets(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	routes := newRouteProvider(cfg, m, log)

	store := usecase.NewSessionStore(usecase.SessionDeps{
		Loader:        usecase.NewDatasetLoader(source, m, log),
		Search:        source,
		Routes:        routes,
		Observer:      m,
		Debounce:      cfg.SearchDebounce,
		InitialCenter: model.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		InitialZoom:   cfg.Map.Zoom,
		Log:           log,
	}, cfg.SessionIdleTimeout, m)
	defer store.CloseAll()

	janitorCtx, cancelJanitor := context.WithCancel(ctx)
	defer cancelJanitor()
	go store.RunJanitor(janitorCtx, janitorInterval)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(store, m, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("dataset_source", cfg.DatasetSource).Msg("ProvinceMap-App server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("シャットダウンします")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDatasets は設定に応じてHTTP API・PostgreSQL・Supabaseのいずれかを開く
func openDatasets(ctx context.Context, cfg *config.Config, log zerolog.Logger) (datasets, io.Closer, error) {
	switch cfg.DatasetSource {
	case config.DatasetSourcePostgres:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			var err error
			dsn, err = database.SupabaseDSN(cfg.SupabaseURL, cfg.SupabaseDBPassword)
			if err != nil {
				return nil, nil, err
			}
		}
		client, err := database.NewPostgreSQLClient(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("PostgreSQLクライアント初期化失敗: %w", err)
		}
		log.Info().Msg("✅ PostgreSQL connection successful!")
		return infraRepo.NewPostgresDatasetRepository(client), client, nil

	case config.DatasetSourceSupabase:
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, fmt.Errorf("Supabaseクライアント初期化失敗: %w", err)
		}
		if err := client.HealthCheck(); err != nil {
			return nil, nil, fmt.Errorf("Supabaseヘルスチェック失敗: %w", err)
		}
		log.Info().Msg("✅ Supabase connection successful!")
		return infraRepo.NewSupabaseDatasetRepository(client), io.NopCloser(nil), nil

	default:
		log.Info().Str("base_url", cfg.DataAPIBaseURL).Msg("データAPIを使用します")
		return infraRepo.NewHTTPDataRepository(cfg.DataAPIBaseURL, cfg.Endpoints, cfg.HTTPTimeout), io.NopCloser(nil), nil
	}
}

// newRouteProvider はOSRMクライアントを作り、Redisが設定されていればキャッシュを前段に置く
func newRouteProvider(cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) repository.RouteProvider {
	osrm := maps.NewOSRMRouteProvider(cfg.RoutingBaseURL, cfg.HTTPTimeout)
	if !cfg.RedisEnabled() {
		return osrm
	}
	client := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.RouteCacheTTL).Msg("経路キャッシュを有効化しました")
	return cache.NewRouteCache(client, osrm, cfg.RouteCacheTTL, m, log)
}
