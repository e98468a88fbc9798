package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/domain/model"
)

var errUnavailable = errors.New("unavailable")

// 2つの正方形の地域: 001 Phường A (105.90-105.95), 002 Xã Bình An (105.95-106.00)、緯度は10.20-10.25
const regionsGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Polygon", "coordinates": [[[105.90,10.20],[105.95,10.20],[105.95,10.25],[105.90,10.25],[105.90,10.20]]]},
			"properties": {"ma_xa": "001", "ten_xa": "Phường A", "loai": "Phường", "dan_toc_chu_dao": "Kinh",
				"dan_toc_phan_bo": [{"dan_toc": "Kinh", "so_luong": 900, "ty_le": 90}, {"dan_toc": "Khmer", "so_luong": 100, "ty_le": 10}]}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Polygon", "coordinates": [[[105.95,10.20],[106.00,10.20],[106.00,10.25],[105.95,10.25],[105.95,10.20]]]},
			"properties": {"ma_xa": "002", "ten_xa": "Xã Bình An", "loai": "Xã", "dan_toc_chu_dao": "Kinh",
				"dan_toc_phan_bo": [{"dan_toc": "Kinh", "so_luong": 1000, "ty_le": 100}]}
		}
	]
}`

const outlineGeoJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"geometry": {"type": "Polygon", "coordinates": [[[105.90,10.20],[106.00,10.20],[106.00,10.25],[105.90,10.25],[105.90,10.20]]]},
		"properties": {"ten": "Vĩnh Long"}
	}]
}`

type fakeDatasets struct {
	regionsErr error
	schoolsErr error
}

func (f *fakeDatasets) RegionBoundaries(ctx context.Context) ([]byte, error) {
	if f.regionsErr != nil {
		return nil, f.regionsErr
	}
	return []byte(regionsGeoJSON), nil
}

func (f *fakeDatasets) ProvinceOutline(ctx context.Context) ([]byte, error) {
	return []byte(outlineGeoJSON), nil
}

func (f *fakeDatasets) GetBranches(ctx context.Context) ([]*model.Branch, error) {
	return []*model.Branch{{ID: "1", Name: "PGD Bình An", Latitude: 10.22, Longitude: 105.97}}, nil
}

func (f *fakeDatasets) GetSchools(ctx context.Context) ([]*model.School, error) {
	if f.schoolsErr != nil {
		return nil, f.schoolsErr
	}
	return []*model.School{{ID: "10", Name: "Trường Tiểu học An Bình", Latitude: 10.21, Longitude: 105.91,
		EducationLevel: model.EducationPrimary, OwnershipType: model.OwnershipPublic, RegionCode: "001"}}, nil
}

func (f *fakeDatasets) GetCulturalSites(ctx context.Context) ([]*model.CulturalSite, error) {
	return []*model.CulturalSite{{ID: "100", Name: "Chùa An Bình", Latitude: 10.215, Longitude: 105.93, Category: model.SiteCategoryPagoda}}, nil
}

type fakeSearch struct {
	mu      sync.Mutex
	details []string
}

func (f *fakeSearch) SearchEthnicity(ctx context.Context, query string) ([]model.EthnicitySearchHit, error) {
	return []model.EthnicitySearchHit{{RegionCode: "001", RegionName: "Phường A", Ethnicity: "Khmer", Count: 100, Percentage: 10}}, nil
}

func (f *fakeSearch) SearchRegions(ctx context.Context, query string) ([]model.RegionSearchHit, error) {
	return []model.RegionSearchHit{{RegionCode: "002", RegionName: "Xã Bình An", Kind: "Xã"}}, nil
}

func (f *fakeSearch) GetRegionEthnicities(ctx context.Context, code string) ([]model.EthnicityCount, error) {
	f.mu.Lock()
	f.details = append(f.details, code)
	f.mu.Unlock()
	return []model.EthnicityCount{{Ethnicity: "Kinh", Count: 900}, {Ethnicity: "Khmer", Count: 100}}, nil
}

type fakeRoutes struct {
	mu    sync.Mutex
	calls [][2]model.LatLng
}

func (f *fakeRoutes) GetDrivingRoute(ctx context.Context, from, to model.LatLng) (*model.RouteResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, [2]model.LatLng{from, to})
	f.mu.Unlock()
	return &model.RouteResult{Path: []model.LatLng{from, to}, DistanceMeters: 1200, DurationSeconds: 180}, nil
}

func (f *fakeRoutes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testDeps(datasets *fakeDatasets) (SessionDeps, *fakeSearch, *fakeRoutes) {
	search := &fakeSearch{}
	routes := &fakeRoutes{}
	return SessionDeps{
		Loader:        NewDatasetLoader(datasets, nil, zerolog.Nop()),
		Search:        search,
		Routes:        routes,
		Debounce:      10 * time.Millisecond,
		InitialCenter: model.LatLng{Lat: 10.25, Lng: 105.97},
		InitialZoom:   10,
		Log:           zerolog.Nop(),
	}, search, routes
}

// newLoadedSession は読み込み済みのセッションを作る
func newLoadedSession(t *testing.T) (*MapSession, *fakeSearch, *fakeRoutes) {
	t.Helper()
	deps, search, routes := testDeps(&fakeDatasets{})
	s := NewMapSession("test", deps)
	t.Cleanup(s.Close)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, search, routes
}

// syncBuffer はループのgoroutineから書かれるログを読むためのバッファ
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
