package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/palette"
	"ProvinceMap-App/internal/domain/repository"
	"ProvinceMap-App/internal/domain/service"
	"ProvinceMap-App/internal/eventloop"
)

var (
	ErrNotReady         = errors.New("地図データの読み込みが完了していません")
	ErrResultNotFound   = errors.New("検索結果が見つかりません")
	ErrRegionNotFound   = errors.New("地域が見つかりません")
	ErrUnknownBaseLayer = errors.New("背景地図が見つかりません")
	ErrNoRouteTarget    = errors.New("経路の目的地が選択されていません")
	ErrInvalidStart     = errors.New("出発地の座標が不正です")
)

// ユーザーに表示する文言
const (
	LocationFailedAlert = "Không lấy được vị trí hiện tại."
	InvalidStartAlert   = `Nhập tọa độ dạng "lat,lng" (vd: 10.123,105.456)`
)

// 現在地・出発地へのズーム
const (
	UserLocationZoom = 15
	RouteStartZoom   = 14
)

const regionDetailTimeout = 10 * time.Second

// RegionSearchSource は地域選択の起点となった検索
type RegionSearchSource string

const (
	SourceEthnicitySearch RegionSearchSource = "ethnicity"
	SourceRegionSearch    RegionSearchSource = "region"
)

// GeolocationOptions はクライアントが現在地を取得するときの条件
type GeolocationOptions struct {
	HighAccuracy bool `json:"enable_high_accuracy"`
	TimeoutMs    int  `json:"timeout_ms"`
	MaximumAgeMs int  `json:"maximum_age_ms"`
}

// DefaultGeolocation は高精度・8秒タイムアウト・10秒キャッシュ
var DefaultGeolocation = GeolocationOptions{HighAccuracy: true, TimeoutMs: 8000, MaximumAgeMs: 10000}

// Alert はユーザーに一度だけ表示するメッセージ
type Alert struct {
	Seq     uint64 `json:"seq"`
	Message string `json:"message"`
}

// SessionDeps はセッションが使う共有の依存
type SessionDeps struct {
	Loader        *DatasetLoader
	Search        repository.SearchRepository
	Routes        repository.RouteProvider
	Observer      service.Observer
	Debounce      time.Duration
	InitialCenter model.LatLng
	InitialZoom   int
	Log           zerolog.Logger
}

// MapSession は1つの地図画面の状態。状態の変更はすべてセッションのイベントループ上で行う
type MapSession struct {
	id     string
	loop   *eventloop.Loop
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	loader     *DatasetLoader
	searchRepo repository.SearchRepository

	filters         *service.FilterEngine
	aggregator      *service.SearchAggregator
	popups          *service.PopupComposer
	camera          *remoteCamera
	viewport        *service.ViewportController
	route           *service.RouteTracker
	ethnicitySearch *service.SequencedSearch[model.EthnicitySearchHit]
	regionSearch    *service.SequencedSearch[model.RegionSearchHit]

	selected atomic.Pointer[model.Region]
	lastSeen atomic.Int64

	// 以下はループ上でのみ触る
	status       LoadStatus
	message      string
	degraded     []string
	catalog      *service.Catalog
	mapQuery     string
	routeTarget  *model.RouteTarget
	userLocation *model.LatLng
	startInput   string
	popup        *model.Popup
	alertSeq     uint64
	alert        *Alert
	detailSeq    uint64
	detailCode   string
	regionDetail []model.EthnicityCount
	baseLayer    model.BaseLayer
}

// NewMapSession はセッションを作成し、イベントループを起動する
func NewMapSession(id string, deps SessionDeps) *MapSession {
	ctx, cancel := context.WithCancel(context.Background())
	log := deps.Log.With().Str("session_id", id).Logger()
	loop := eventloop.New(log)
	sched := loopScheduler{loop: loop}

	s := &MapSession{
		id:           id,
		loop:         loop,
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
		loader:       deps.Loader,
		searchRepo:   deps.Search,
		filters:      service.NewFilterEngine(),
		aggregator:   service.NewSearchAggregator(service.DefaultSearchLimit),
		popups:       service.NewPopupComposer(),
		camera:       newRemoteCamera(deps.InitialCenter, deps.InitialZoom),
		status:       StatusLoading,
		regionDetail: []model.EthnicityCount{},
	}
	s.baseLayer, _ = model.FindBaseLayer(model.DefaultBaseLayerKey)
	s.viewport = service.NewViewportController(s.camera, sched)
	s.route = service.NewRouteTracker(ctx, deps.Routes, sched, deps.Observer, log)
	s.route.OnDone(s.routeDone)
	s.ethnicitySearch = service.NewSequencedSearch[model.EthnicitySearchHit](ctx, "ethnicity", deps.Search.SearchEthnicity, sched, deps.Debounce, deps.Observer, log)
	s.regionSearch = service.NewSequencedSearch[model.RegionSearchHit](ctx, "region", deps.Search.SearchRegions, sched, deps.Debounce, deps.Observer, log)
	s.touch()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("イベントループが異常終了しました")
		}
	}()
	return s
}

// ID はセッションIDを返す
func (s *MapSession) ID() string {
	return s.id
}

// Close はイベントループと送信中のリクエストを止める
func (s *MapSession) Close() {
	s.cancel()
	s.loop.Close()
}

// LastSeen は最後に操作された時刻
func (s *MapSession) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *MapSession) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// call はfnをイベントループ上で実行して完了を待つ
func (s *MapSession) call(ctx context.Context, fn func()) error {
	s.touch()
	return s.loop.Call(ctx, fn)
}

// callReady はデータ読み込み済みのときだけfnを実行する
func (s *MapSession) callReady(ctx context.Context, fn func() error) error {
	var inner error
	err := s.call(ctx, func() {
		if s.status != StatusReady || s.catalog == nil {
			inner = ErrNotReady
			return
		}
		inner = fn()
	})
	if err != nil {
		return err
	}
	return inner
}

// Load は全データセットを取得してセッションに反映する。
// 境界データの失敗はセッションをfailed状態にする（エラーは返さない）
func (s *MapSession) Load(ctx context.Context) error {
	result, loadErr := s.loader.Load(ctx)
	return s.call(ctx, func() {
		if loadErr != nil {
			s.log.Error().Err(loadErr).Msg("地図データの読み込みに失敗しました")
			s.status = StatusFailed
			s.message = FatalLoadMessage
			return
		}
		s.catalog = result.Catalog
		s.degraded = result.Degraded
		s.status = StatusReady
		s.message = ""
		if s.catalog.Index.Len() > 0 {
			s.viewport.FitInitial(s.catalog.Index.Extent())
		}
	})
}

// Search は地図検索欄の入力で統合検索を行う。入力は地域レイヤーとマーカーの絞り込みにも使う
func (s *MapSession) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	var results []model.SearchResult
	err := s.callReady(ctx, func() error {
		s.mapQuery = query
		results = s.aggregator.Search(query, s.catalog)
		return nil
	})
	return results, err
}

// ToggleFilter はフィルタを1つ切り替える
func (s *MapSession) ToggleFilter(ctx context.Context, group model.FilterGroup, key string) (*model.FilterState, error) {
	var (
		next      *model.FilterState
		toggleErr error
	)
	err := s.call(ctx, func() {
		next, toggleErr = s.filters.Toggle(group, key)
	})
	if err != nil {
		return nil, err
	}
	return next, toggleErr
}

// Filters は現在のフィルタ状態
func (s *MapSession) Filters() *model.FilterState {
	return s.filters.State()
}

// SelectedRegion は選択中の地域（無ければnil）
func (s *MapSession) SelectedRegion() *model.Region {
	return s.selected.Load()
}

// Route は現在の経路（無ければnil）
func (s *MapSession) Route() *model.RouteResult {
	return s.route.Current()
}

// Regions は全地域の表示可否とスタイル
func (s *MapSession) Regions(ctx context.Context) ([]model.RegionRender, error) {
	var renders []model.RegionRender
	err := s.callReady(ctx, func() error {
		renders = service.RenderRegions(s.catalog.Index, s.filters.State(), s.selected.Load(), s.mapQuery)
		return nil
	})
	return renders, err
}

// RegionFeatures は描画用の地域FeatureCollection（スタイル付き）
func (s *MapSession) RegionFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	err := s.callReady(ctx, func() error {
		renders := service.RenderRegions(s.catalog.Index, s.filters.State(), s.selected.Load(), s.mapQuery)
		for _, rr := range renders {
			region, ok := s.catalog.Index.Get(rr.Code)
			if !ok || region.Geometry == nil {
				continue
			}
			f := geojson.NewFeature(region.Geometry)
			f.ID = rr.Code
			f.Properties["ma_xa"] = rr.Code
			f.Properties["ten_xa"] = rr.Name
			f.Properties["visible"] = rr.Visible
			f.Properties["style"] = rr.Style
			fc.Append(f)
		}
		return nil
	})
	return fc, err
}

// Outline は省境界のFeatureCollection
func (s *MapSession) Outline(ctx context.Context) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	err := s.callReady(ctx, func() error {
		for _, g := range s.catalog.Outline {
			f := geojson.NewFeature(g)
			f.Properties["style"] = palette.OutlineStyle()
			fc.Append(f)
		}
		return nil
	})
	return fc, err
}

// Markers は表示中の点データ。queryがnilなら地図検索欄の入力で絞り込む
func (s *MapSession) Markers(ctx context.Context, query *string) ([]model.Marker, error) {
	var markers []model.Marker
	err := s.callReady(ctx, func() error {
		q := s.mapQuery
		if query != nil {
			q = *query
		}
		markers = service.BuildMarkers(s.catalog, s.filters.State(), q, s.popups)
		return nil
	})
	return markers, err
}

// SelectResult は統合検索の結果を選択する。
// 目的地を更新して経路を消し、カメラ移動が落ち着いてからポップアップと経路検索を行う
func (s *MapSession) SelectResult(ctx context.Context, resultID string) (*model.SearchResult, error) {
	var selected *model.SearchResult
	err := s.callReady(ctx, func() error {
		res, ok := s.catalog.Resolve(resultID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrResultNotFound, resultID)
		}
		selected = &res
		s.mapQuery = ""

		target := model.FocusTarget{Point: res.Coordinates, Zoom: res.Zoom}
		if res.HasBounds() {
			target = model.FocusTarget{Bounds: res.Bounds}
		}
		center, hasCenter := target.Center()
		if hasCenter {
			s.routeTarget = &model.RouteTarget{Label: res.Label, Coords: center}
		} else {
			s.routeTarget = nil
		}
		s.route.Clear()

		s.viewport.Focus(target, func() {
			s.afterFocus(res, center, hasCenter)
		})
		return nil
	})
	return selected, err
}

func (s *MapSession) afterFocus(res model.SearchResult, at model.LatLng, hasCenter bool) {
	if hasCenter {
		s.popup = s.popups.ForSearchResult(res, at)
	}
	if res.EntityType == model.EntityRegion && res.Region != nil {
		s.setSelected(res.Region)
	}
	if !hasCenter {
		return
	}
	if s.userLocation != nil {
		s.route.Request(*s.userLocation, at)
		return
	}
	if s.startInput != "" {
		if start, err := helper.ParseLatLng(s.startInput); err == nil {
			s.userLocation = &start
			s.route.Request(start, at)
		}
	}
}

// Click は地図クリック。地域の上なら選択して詳細ポップアップを開く
func (s *MapSession) Click(ctx context.Context, at model.LatLng) (*model.Region, error) {
	var hit *model.Region
	err := s.callReady(ctx, func() error {
		r, ok := s.catalog.Index.RegionAt(at)
		if !ok {
			return nil
		}
		hit = r
		s.setSelected(r)
		s.popup = s.popups.ForRegion(r, at)
		if b, ok := s.catalog.Index.Bounds(r.Code); ok {
			s.viewport.FocusRegion(b, nil)
		}
		return nil
	})
	return hit, err
}

// SelectRegion は民族検索・地域検索の結果から地域を選択し、元の検索をクリアする。
// カメラが落ち着いたら地域の重心に詳細ポップアップを開く
func (s *MapSession) SelectRegion(ctx context.Context, code string, source RegionSearchSource) (*model.Region, error) {
	var region *model.Region
	err := s.callReady(ctx, func() error {
		r, ok := s.catalog.Index.Get(code)
		if !ok {
			return fmt.Errorf("%w: %s", ErrRegionNotFound, code)
		}
		region = r
		switch source {
		case SourceEthnicitySearch:
			s.ethnicitySearch.Clear()
		case SourceRegionSearch:
			s.regionSearch.Clear()
		}
		s.setSelected(r)
		s.popup = nil
		anchor, _ := s.catalog.Index.Centroid(r.Code)
		if b, ok := s.catalog.Index.Bounds(r.Code); ok {
			s.viewport.FocusRegion(b, func() {
				s.popup = s.popups.ForRegion(r, anchor)
			})
		}
		return nil
	})
	return region, err
}

// ClearSelection は地域の選択とポップアップを閉じる
func (s *MapSession) ClearSelection(ctx context.Context) error {
	return s.call(ctx, func() {
		s.setSelected(nil)
		s.popup = nil
	})
}

// MoveEnded はクライアントのカメラ移動完了通知
func (s *MapSession) MoveEnded(ctx context.Context, center model.LatLng, zoom int) error {
	return s.call(ctx, func() {
		s.camera.moved(center, zoom)
		s.viewport.MoveEnded()
	})
}

// LocationFound は現在地の取得成功。経路を消して現在地へ移動し、目的地があれば経路を引く
func (s *MapSession) LocationFound(ctx context.Context, loc model.LatLng) error {
	if !helper.IsValidLatLng(loc) {
		return fmt.Errorf("%w: %s", helper.ErrInvalidLatLng, loc)
	}
	return s.call(ctx, func() {
		s.userLocation = &loc
		s.route.Clear()
		s.popup = s.popups.ForTitle(service.UserLocationTitle, loc)
		s.viewport.Focus(model.FocusTarget{Point: &loc, Zoom: UserLocationZoom}, nil)
		if s.routeTarget != nil {
			s.route.Request(loc, s.routeTarget.Coords)
		}
	})
}

// LocationFailed は現在地の取得失敗。アラートを1回出すだけで他は何もしない
func (s *MapSession) LocationFailed(ctx context.Context, reason string) error {
	return s.call(ctx, func() {
		s.log.Info().Str("reason", reason).Msg("現在地を取得できませんでした")
		s.raise(LocationFailedAlert)
	})
}

// SetRouteStart は手入力の出発地（"lat,lng"）。目的地が無ければ入力を覚えるだけ
func (s *MapSession) SetRouteStart(ctx context.Context, input string) error {
	var inner error
	err := s.call(ctx, func() {
		s.startInput = input
		if s.routeTarget == nil {
			inner = ErrNoRouteTarget
			return
		}
		start, err := helper.ParseLatLng(input)
		if err != nil {
			s.raise(InvalidStartAlert)
			inner = fmt.Errorf("%w: %v", ErrInvalidStart, err)
			return
		}
		s.userLocation = &start
		s.route.Request(start, s.routeTarget.Coords)
		s.popup = s.popups.ForTitle(service.RouteStartTitle, start)
		s.viewport.Focus(model.FocusTarget{Point: &start, Zoom: RouteStartZoom}, nil)
	})
	if err != nil {
		return err
	}
	return inner
}

// SetEthnicityQuery は民族検索の入力（300ms待ってから送信）
func (s *MapSession) SetEthnicityQuery(ctx context.Context, query string) error {
	return s.call(ctx, func() {
		s.ethnicitySearch.SetQuery(query)
	})
}

// SetRegionQuery は地域検索の入力（300ms待ってから送信）
func (s *MapSession) SetRegionQuery(ctx context.Context, query string) error {
	return s.call(ctx, func() {
		s.regionSearch.SetQuery(query)
	})
}

// SetBaseLayer は背景地図を切り替える
func (s *MapSession) SetBaseLayer(ctx context.Context, key string) (model.BaseLayer, error) {
	layer, ok := model.FindBaseLayer(key)
	if !ok {
		return model.BaseLayer{}, fmt.Errorf("%w: %s", ErrUnknownBaseLayer, key)
	}
	err := s.call(ctx, func() {
		s.baseLayer = layer
	})
	return layer, err
}

// setSelected は選択中の地域を差し替え、地域が変わったら民族別人口を読み込み直す
func (s *MapSession) setSelected(r *model.Region) {
	s.selected.Store(r)
	if r == nil {
		s.detailSeq++
		s.detailCode = ""
		s.regionDetail = []model.EthnicityCount{}
		return
	}
	if r.Code == s.detailCode {
		return
	}
	s.detailCode = r.Code
	s.detailSeq++
	seq := s.detailSeq
	code := r.Code

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, regionDetailTimeout)
		defer cancel()
		counts, err := s.searchRepo.GetRegionEthnicities(ctx, code)
		s.loop.Post(func() {
			if seq != s.detailSeq {
				return
			}
			if err != nil {
				s.log.Warn().Err(err).Str("ma_xa", code).Msg("地域の民族データ取得に失敗")
				counts = nil
			}
			if counts == nil {
				counts = []model.EthnicityCount{}
			}
			s.regionDetail = counts
		})
	}()
}

// routeDone は最新の経路リクエストの完了時にループ上で呼ばれる
func (s *MapSession) routeDone(route *model.RouteResult, err error) {
	if err != nil || route == nil {
		return
	}
	s.log.Info().
		Float64("distance_m", route.DistanceMeters).
		Dur("duration", route.Duration()).
		Int("points", len(route.Path)).
		Msg("経路を更新しました")
}

func (s *MapSession) raise(message string) {
	s.alertSeq++
	s.alert = &Alert{Seq: s.alertSeq, Message: message}
}
