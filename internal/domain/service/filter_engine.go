package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
)

var (
	// ErrUnknownFilterGroup はtoggle対象のグループが存在しない
	ErrUnknownFilterGroup = errors.New("不明なフィルタグループです")
	// ErrUnknownFilterKey はフラグ型グループに存在しないキー
	ErrUnknownFilterKey = errors.New("不明なフィルタキーです")
	// ErrEmptyFilterKey はキーが空
	ErrEmptyFilterKey = errors.New("フィルタキーが空です")
)

// FilterEngine はフィルタ状態を保持する。状態は不変値として公開し、
// toggleのたびに新しい値をcompare-and-swapで差し替える
type FilterEngine struct {
	state atomic.Pointer[model.FilterState]
}

// NewFilterEngine は初期状態（全フラグON・選択なし）のエンジンを作成する
func NewFilterEngine() *FilterEngine {
	e := &FilterEngine{}
	e.state.Store(model.NewDefaultFilterState())
	return e
}

// State は現在の状態を返す。返り値は変更しないこと
func (e *FilterEngine) State() *model.FilterState {
	return e.state.Load()
}

// Toggle はグループの種類に応じてkeyを切り替え、新しい状態を返す
func (e *FilterEngine) Toggle(group model.FilterGroup, key string) (*model.FilterState, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyFilterKey
	}
	for {
		current := e.state.Load()
		next, err := ApplyToggle(current, group, key)
		if err != nil {
			return nil, err
		}
		if e.state.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// ApplyToggle はprevを変更せずにtoggle後の状態を作る
func ApplyToggle(prev *model.FilterState, group model.FilterGroup, key string) (*model.FilterState, error) {
	next := prev.Clone()
	switch group.Kind() {
	case model.GroupKindBoolean:
		flags := next.Flags(group)
		if _, ok := flags[key]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownFilterKey, group, key)
		}
		flags[key] = !flags[key]
	case model.GroupKindMulti:
		ids := next.Selection(group)
		if i := slices.Index(ids, key); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		} else {
			ids = append(ids, key)
		}
		next.SetSelection(group, ids)
	case model.GroupKindExclusive:
		if next.ExclusiveEthnicity == key {
			next.ExclusiveEthnicity = ""
		} else {
			next.ExclusiveEthnicity = key
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilterGroup, group)
	}
	return next, nil
}

// IsRegionVisible は民族レイヤーON、民族の単一選択が有効、または複数選択に含まれる場合に表示
func IsRegionVisible(r *model.Region, f *model.FilterState) bool {
	return f.LayerOn(model.LayerEthnicity) || f.HasExclusiveEthnicity() || f.IsRegionSelected(r.Code)
}

// IsSchoolVisible は学校レイヤーと教育段階・設置形態のフラグで判定する。
// どちらかの次元でフラグが1つも選ばれていなければ全校非表示
func IsSchoolVisible(s *model.School, f *model.FilterState) bool {
	if !f.LayerOn(model.LayerSchools) {
		return false
	}
	if !model.AnyFlag(f.EducationLevels) || !model.AnyFlag(f.OwnershipTypes) {
		return false
	}
	if s.EducationLevel == "" || s.OwnershipType == "" {
		return false
	}
	return f.EducationLevels[s.EducationLevel] && f.OwnershipTypes[s.OwnershipType]
}

// IsCulturalSiteVisible はレイヤー・カテゴリ・複数選択（選択があれば）で判定する
func IsCulturalSiteVisible(d *model.CulturalSite, f *model.FilterState) bool {
	if !f.LayerOn(model.LayerCulturalSites) {
		return false
	}
	if !f.SiteCategories[d.CategoryOrDefault()] {
		return false
	}
	if len(f.SelectedCulturalSiteIDs) > 0 && !f.IsCulturalSiteSelected(string(d.ID)) {
		return false
	}
	return true
}

// IsBranchVisible は選択された支店だけを表示する
func IsBranchVisible(b *model.Branch, f *model.FilterState) bool {
	return f.IsBranchSelected(string(b.ID))
}

// SchoolMatchesQuery は学校名・地域名・地域コードで絞り込む
func SchoolMatchesQuery(s *model.School, query string) bool {
	q := helper.NormalizeQuery(query)
	return helper.ContainsFold(s.Name, q) || helper.ContainsFold(s.RegionName, q) || helper.ContainsFold(string(s.RegionCode), q)
}

// CulturalSiteMatchesQuery は施設名・地域名で絞り込む
func CulturalSiteMatchesQuery(d *model.CulturalSite, query string) bool {
	q := helper.NormalizeQuery(query)
	return helper.ContainsFold(d.Name, q) || helper.ContainsFold(d.RegionName, q)
}

// BranchMatchesQuery は支店名で絞り込む
func BranchMatchesQuery(b *model.Branch, query string) bool {
	return helper.ContainsFold(b.Name, helper.NormalizeQuery(query))
}
