package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
	"ProvinceMap-App/internal/domain/service"
)

// LoadStatus はセッションの初期読み込み状態
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// FatalLoadMessage は境界データが読めなかったときに全画面で出す文言
const FatalLoadMessage = "Không thể tải dữ liệu bản đồ"

// データセット名（メトリクスのラベルと劣化一覧に使う）
const (
	DatasetRegions       = "regions"
	DatasetOutline       = "outline"
	DatasetBranches      = "branches"
	DatasetSchools       = "schools"
	DatasetCulturalSites = "cultural_sites"
)

// LoadMetrics は読み込み結果の記録先。nilでもよい
type LoadMetrics interface {
	ObserveDatasetLoad(dataset string, err error)
	ObserveDatasetLoadDuration(d time.Duration)
}

// LoadResult は初期読み込みの結果
type LoadResult struct {
	Catalog  *service.Catalog
	Degraded []string // 読み込めず空になった点データ
}

// DatasetLoader は境界と点データを並行に取得し、揃ってからカタログを作る。
// 境界（地域・省）の失敗は致命的、点データの失敗はそのレイヤーを空にして続行する
type DatasetLoader struct {
	repo    repository.DatasetRepository
	metrics LoadMetrics
	log     zerolog.Logger
}

// NewDatasetLoader は新しいDatasetLoaderを作成する
func NewDatasetLoader(repo repository.DatasetRepository, metrics LoadMetrics, log zerolog.Logger) *DatasetLoader {
	return &DatasetLoader{repo: repo, metrics: metrics, log: log}
}

// Load は全データセットを取得する。エラーは境界データの失敗のときだけ返す
func (l *DatasetLoader) Load(ctx context.Context) (*LoadResult, error) {
	started := time.Now()
	defer func() { l.observeDuration(time.Since(started)) }()

	g, gctx := errgroup.WithContext(ctx)

	var (
		regions  []*model.Region
		outline  []orb.Geometry
		branches []*model.Branch
		schools  []*model.School
		sites    []*model.CulturalSite

		mu       sync.Mutex
		degraded []string
	)
	degrade := func(name string, err error) {
		l.log.Warn().Err(err).Str("dataset", name).Msg("点データの取得に失敗、レイヤーを空にします")
		mu.Lock()
		degraded = append(degraded, name)
		mu.Unlock()
	}

	g.Go(func() error {
		data, err := l.repo.RegionBoundaries(gctx)
		if err == nil {
			regions, err = helper.DecodeRegionCollection(data)
		}
		l.observe(DatasetRegions, err)
		if err != nil {
			return fmt.Errorf("地域境界の読み込みに失敗: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		data, err := l.repo.ProvinceOutline(gctx)
		if err == nil {
			outline, err = helper.DecodeOutline(data)
		}
		l.observe(DatasetOutline, err)
		if err != nil {
			return fmt.Errorf("省境界の読み込みに失敗: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		branches, err = l.repo.GetBranches(gctx)
		l.observe(DatasetBranches, err)
		if err != nil {
			branches = nil
			degrade(DatasetBranches, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schools, err = l.repo.GetSchools(gctx)
		l.observe(DatasetSchools, err)
		if err != nil {
			schools = nil
			degrade(DatasetSchools, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sites, err = l.repo.GetCulturalSites(gctx)
		l.observe(DatasetCulturalSites, err)
		if err != nil {
			sites = nil
			degrade(DatasetCulturalSites, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := service.NewCatalog(service.NewFeatureIndex(regions), outline,
		nonNil(branches), nonNil(schools), nonNil(sites))

	l.log.Info().
		Int("regions", catalog.Index.Len()).
		Int("branches", len(catalog.Branches)).
		Int("schools", len(catalog.Schools)).
		Int("cultural_sites", len(catalog.CulturalSites)).
		Strs("degraded", degraded).
		Msg("地図データを読み込みました")

	return &LoadResult{Catalog: catalog, Degraded: degraded}, nil
}

func (l *DatasetLoader) observe(dataset string, err error) {
	if l.metrics != nil {
		l.metrics.ObserveDatasetLoad(dataset, err)
	}
}

func (l *DatasetLoader) observeDuration(d time.Duration) {
	if l.metrics != nil {
		l.metrics.ObserveDatasetLoadDuration(d)
	}
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
