package service

import (
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"ProvinceMap-App/internal/domain/model"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler はテストのgoroutineをイベントループに見立てる
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	tasks  chan func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(chan func(), 64)}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Post(f func()) bool {
	s.tasks <- f
	return true
}

// fireTimers は停止されていないタイマーをすべて発火させる
func (s *fakeScheduler) fireTimers() int {
	s.mu.Lock()
	pending := append([]*fakeTimer(nil), s.timers...)
	s.mu.Unlock()
	n := 0
	for _, t := range pending {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

func (s *fakeScheduler) activeTimers() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// runPosted はPostされたタスクをn個待って実行する
func (s *fakeScheduler) runPosted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case task := <-s.tasks:
			task()
		case <-time.After(2 * time.Second):
			t.Fatalf("Postされたタスクが届かない (%d/%d)", i, n)
		}
	}
}

// square は左下(minLng, minLat)から一辺sizeの正方形の地域を作る
func square(code, name string, minLng, minLat, size float64) *model.Region {
	ring := orb.Ring{
		{minLng, minLat},
		{minLng + size, minLat},
		{minLng + size, minLat + size},
		{minLng, minLat + size},
		{minLng, minLat},
	}
	return &model.Region{
		Code:     code,
		Name:     name,
		Kind:     "Xã",
		Geometry: orb.Polygon{ring},
	}
}

// testCatalog は検索・フィルタのテスト用データ
func testCatalog() *Catalog {
	phuongA := square("001", "Phường A", 105.90, 10.20, 0.05)
	phuongA.DominantEthnicity = "Khmer"
	phuongA.EthnicBreakdown = []model.EthnicShare{{Ethnicity: "Khmer", Count: 800}, {Ethnicity: "Kinh", Count: 200}}
	xaB := square("002", "Xã Bình An", 105.95, 10.20, 0.05)
	xaB.DominantEthnicity = "Kinh"
	xaB.EthnicBreakdown = []model.EthnicShare{{Ethnicity: "Kinh", Count: 1000}}

	index := NewFeatureIndex([]*model.Region{phuongA, xaB})
	branches := []*model.Branch{
		{ID: "1", Name: "PGD Bình An", Latitude: 10.22, Longitude: 105.97},
		{ID: "2", Name: "PGD Trung Tâm", Latitude: 10.24, Longitude: 105.92},
	}
	schools := []*model.School{
		{ID: "10", Name: "Trường Tiểu học An Bình", Latitude: 10.21, Longitude: 105.91,
			EducationLevel: model.EducationPrimary, OwnershipType: model.OwnershipPublic, RegionCode: "001", RegionName: "Phường A"},
		{ID: "11", Name: "Trường THPT Chuyên", Latitude: 10.23, Longitude: 105.96,
			EducationLevel: model.EducationUpperSec, OwnershipType: model.OwnershipPrivate, RegionCode: "002", RegionName: "Xã Bình An"},
	}
	sites := []*model.CulturalSite{
		{ID: "100", Name: "Chùa An Bình", Latitude: 10.215, Longitude: 105.93, Category: model.SiteCategoryPagoda, RegionName: "Phường A"},
		{ID: "101", Name: "Đình Bình Thủy", Latitude: 10.225, Longitude: 105.98, Category: ""},
	}
	return NewCatalog(index, nil, branches, schools, sites)
}

func multiOf(r *model.Region) orb.MultiPolygon {
	return orb.MultiPolygon{r.Geometry.(orb.Polygon)}
}
