package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/usecase"
)

// SessionHandler は地図セッションAPIのハンドラー
type SessionHandler struct {
	store *usecase.SessionStore
}

// NewSessionHandler は新しいSessionHandlerインスタンスを作成
func NewSessionHandler(store *usecase.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

type toggleRequest struct {
	Group string `json:"group"`
	Key   string `json:"key"`
}

type selectRequest struct {
	ResultID string `json:"result_id"`
}

type pointRequest struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Zoom int      `json:"zoom"`
}

type locationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

type routeStartRequest struct {
	Input string `json:"input"`
}

type queryRequest struct {
	Q string `json:"q"`
}

type regionSelectRequest struct {
	Code   string `json:"code"`
	Source string `json:"source"`
}

type baseLayerRequest struct {
	Key string `json:"key"`
}

// CreateSession POST /api/sessions - セッションを作成して地図データを読み込む
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.store.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := session.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSession GET /api/sessions/:id - 画面状態一式
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := session.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSession DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /api/sessions/:id/search?q= - 統合検索
func (h *SessionHandler) Search(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	results, err := session.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ToggleFilter POST /api/sessions/:id/filters/toggle
func (h *SessionHandler) ToggleFilter(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req toggleRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Group) == "" {
		respondError(c, &ValidationError{Field: "group", Message: "groupは必須です"})
		return
	}
	state, err := session.ToggleFilter(c.Request.Context(), model.FilterGroup(req.Group), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Regions GET /api/sessions/:id/regions - 地域ごとの表示可否とスタイル
func (h *SessionHandler) Regions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	renders, err := session.Regions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": renders})
}

// RegionFeatures GET /api/sessions/:id/geojson/regions - スタイル付きFeatureCollection
func (h *SessionHandler) RegionFeatures(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	fc, err := session.RegionFeatures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// Outline GET /api/sessions/:id/geojson/outline - 省境界
func (h *SessionHandler) Outline(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	fc, err := session.Outline(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// Markers GET /api/sessions/:id/markers?q= - 表示中の点データ
func (h *SessionHandler) Markers(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var query *string
	if q, present := c.GetQuery("q"); present {
		query = &q
	}
	markers, err := session.Markers(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if markers == nil {
		markers = []model.Marker{}
	}
	c.JSON(http.StatusOK, gin.H{"markers": markers})
}

// Select POST /api/sessions/:id/select - 検索結果の選択
func (h *SessionHandler) Select(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ResultID == "" {
		respondError(c, &ValidationError{Field: "result_id", Message: "result_idは必須です"})
		return
	}
	res, err := session.SelectResult(c.Request.Context(), req.ResultID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, gin.H{"selected": res})
}

// Click POST /api/sessions/:id/click - 地図クリック
func (h *SessionHandler) Click(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	at, ok := bindPoint(c)
	if !ok {
		return
	}
	region, err := session.Click(c.Request.Context(), at)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, gin.H{"region": region})
}

// SelectRegion POST /api/sessions/:id/regions/select - 民族検索・地域検索の結果から地域を選ぶ
func (h *SessionHandler) SelectRegion(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req regionSelectRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Code == "" {
		respondError(c, &ValidationError{Field: "code", Message: "codeは必須です"})
		return
	}
	source := usecase.RegionSearchSource(req.Source)
	switch source {
	case usecase.SourceEthnicitySearch, usecase.SourceRegionSearch, "":
	default:
		respondError(c, &ValidationError{Field: "source", Message: "sourceは'ethnicity'または'region'を指定してください"})
		return
	}
	region, err := session.SelectRegion(c.Request.Context(), req.Code, source)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, gin.H{"region": region})
}

// ClearSelection DELETE /api/sessions/:id/selection
func (h *SessionHandler) ClearSelection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ClearSelection(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveEnded POST /api/sessions/:id/camera/moveend - カメラ移動完了の通知
func (h *SessionHandler) MoveEnded(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req pointRequest
	if !bindJSON(c, &req) {
		return
	}
	at, err := req.latLng()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := session.MoveEnded(c.Request.Context(), at, req.Zoom); err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, nil)
}

// Location POST /api/sessions/:id/location - 現在地の取得結果（成功は座標、失敗はerror）
func (h *SessionHandler) Location(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req locationRequest
	if !bindJSON(c, &req) {
		return
	}

	var err error
	switch {
	case req.Error != "":
		err = session.LocationFailed(c.Request.Context(), req.Error)
	case req.Lat != nil && req.Lng != nil:
		err = session.LocationFound(c.Request.Context(), model.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	default:
		err = &ValidationError{Field: "lat,lng", Message: "座標またはerrorのどちらかが必要です"}
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, nil)
}

// RouteStart POST /api/sessions/:id/route/start - 手入力の出発地
func (h *SessionHandler) RouteStart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req routeStartRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := session.SetRouteStart(c.Request.Context(), req.Input); err != nil {
		respondError(c, err)
		return
	}
	h.respondWithSnapshot(c, session, nil)
}

// EthnicityQuery PUT /api/sessions/:id/ethnicity-query
func (h *SessionHandler) EthnicityQuery(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req queryRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := session.SetEthnicityQuery(c.Request.Context(), req.Q); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// RegionQuery PUT /api/sessions/:id/region-query
func (h *SessionHandler) RegionQuery(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req queryRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := session.SetRegionQuery(c.Request.Context(), req.Q); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// BaseLayer PUT /api/sessions/:id/basemap
func (h *SessionHandler) BaseLayer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req baseLayerRequest
	if !bindJSON(c, &req) {
		return
	}
	layer, err := session.SetBaseLayer(c.Request.Context(), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, layer)
}

func (h *SessionHandler) session(c *gin.Context) (*usecase.MapSession, bool) {
	session, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

// respondWithSnapshot は操作後の画面状態を返す。extraがあれば同じ階層に加える
func (h *SessionHandler) respondWithSnapshot(c *gin.Context, session *usecase.MapSession, extra gin.H) {
	snap, err := session.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"session": snap}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return false
	}
	return true
}

func bindPoint(c *gin.Context) (model.LatLng, bool) {
	var req pointRequest
	if !bindJSON(c, &req) {
		return model.LatLng{}, false
	}
	at, err := req.latLng()
	if err != nil {
		respondError(c, err)
		return model.LatLng{}, false
	}
	return at, true
}

func (r pointRequest) latLng() (model.LatLng, error) {
	if r.Lat == nil || r.Lng == nil {
		return model.LatLng{}, &ValidationError{Field: "lat,lng", Message: "座標は必須です"}
	}
	at := model.LatLng{Lat: *r.Lat, Lng: *r.Lng}
	if at.Lat < -90 || at.Lat > 90 {
		return model.LatLng{}, &ValidationError{Field: "lat", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if at.Lng < -180 || at.Lng > 180 {
		return model.LatLng{}, &ValidationError{Field: "lng", Message: "経度は-180から180の範囲で指定してください"}
	}
	return at, nil
}
