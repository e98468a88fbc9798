package model

import "slices"

// FilterGroup はフィルタ操作の対象グループ
type FilterGroup string

// FilterGroupConstants はtoggle操作で指定できるグループの定数
const (
	GroupLayers         FilterGroup = "layers"
	GroupEducationLevel FilterGroup = "capHoc"
	GroupOwnershipType  FilterGroup = "loaiHinh"
	GroupSiteCategory   FilterGroup = "loaiDiaDiem"
	GroupBranch         FilterGroup = "phongMulti"
	GroupRegion         FilterGroup = "xaMulti"
	GroupCulturalSite   FilterGroup = "diaDiemMulti"
	GroupEthnicity      FilterGroup = "danTocExclusive"
)

// GroupKind はグループの操作セマンティクス
// Boolean はフラグ反転、Multi は集合への追加・削除、Exclusive は単一選択（同じ値で解除）
type GroupKind int

const (
	GroupKindUnknown GroupKind = iota
	GroupKindBoolean
	GroupKindMulti
	GroupKindExclusive
)

// Kind はグループの種類を返す
func (g FilterGroup) Kind() GroupKind {
	switch g {
	case GroupLayers, GroupEducationLevel, GroupOwnershipType, GroupSiteCategory:
		return GroupKindBoolean
	case GroupBranch, GroupRegion, GroupCulturalSite:
		return GroupKindMulti
	case GroupEthnicity:
		return GroupKindExclusive
	default:
		return GroupKindUnknown
	}
}

// FilterState は地図のフィルタ状態。公開後は変更せず、更新時は丸ごと差し替える
type FilterState struct {
	Layers                  map[string]bool `json:"layers"`
	EducationLevels         map[string]bool `json:"capHoc"`
	OwnershipTypes          map[string]bool `json:"loaiHinh"`
	SiteCategories          map[string]bool `json:"loaiDiaDiem"`
	SelectedBranchIDs       []string        `json:"phong"`
	SelectedRegionIDs       []string        `json:"xa"`
	SelectedCulturalSiteIDs []string        `json:"diaDiem"`
	ExclusiveEthnicity      string          `json:"danToc"` // 空文字は未選択
}

// NewDefaultFilterState は全フラグON・選択なしの初期状態を作成する
func NewDefaultFilterState() *FilterState {
	return &FilterState{
		Layers:                  allTrue(GetAllLayers()),
		EducationLevels:         allTrue(GetFilterableEducationLevels()),
		OwnershipTypes:          allTrue(GetFilterableOwnershipTypes()),
		SiteCategories:          allTrue(GetAllSiteCategories()),
		SelectedBranchIDs:       []string{},
		SelectedRegionIDs:       []string{},
		SelectedCulturalSiteIDs: []string{},
	}
}

func allTrue(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Clone はディープコピーを返す
func (f *FilterState) Clone() *FilterState {
	return &FilterState{
		Layers:                  cloneFlags(f.Layers),
		EducationLevels:         cloneFlags(f.EducationLevels),
		OwnershipTypes:          cloneFlags(f.OwnershipTypes),
		SiteCategories:          cloneFlags(f.SiteCategories),
		SelectedBranchIDs:       append([]string{}, f.SelectedBranchIDs...),
		SelectedRegionIDs:       append([]string{}, f.SelectedRegionIDs...),
		SelectedCulturalSiteIDs: append([]string{}, f.SelectedCulturalSiteIDs...),
		ExclusiveEthnicity:      f.ExclusiveEthnicity,
	}
}

func cloneFlags(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Flags はフラグ型グループのマップを返す（フラグ型以外はnil）
func (f *FilterState) Flags(group FilterGroup) map[string]bool {
	switch group {
	case GroupLayers:
		return f.Layers
	case GroupEducationLevel:
		return f.EducationLevels
	case GroupOwnershipType:
		return f.OwnershipTypes
	case GroupSiteCategory:
		return f.SiteCategories
	default:
		return nil
	}
}

// Selection は複数選択グループのIDリストを返す（複数選択以外はnil）
func (f *FilterState) Selection(group FilterGroup) []string {
	switch group {
	case GroupBranch:
		return f.SelectedBranchIDs
	case GroupRegion:
		return f.SelectedRegionIDs
	case GroupCulturalSite:
		return f.SelectedCulturalSiteIDs
	default:
		return nil
	}
}

// SetSelection は複数選択グループのIDリストを差し替える
func (f *FilterState) SetSelection(group FilterGroup, ids []string) {
	switch group {
	case GroupBranch:
		f.SelectedBranchIDs = ids
	case GroupRegion:
		f.SelectedRegionIDs = ids
	case GroupCulturalSite:
		f.SelectedCulturalSiteIDs = ids
	}
}

// LayerOn はレイヤーが表示中か
func (f *FilterState) LayerOn(layer string) bool {
	return f.Layers[layer]
}

// HasExclusiveEthnicity は民族の単一選択フィルタが有効か
func (f *FilterState) HasExclusiveEthnicity() bool {
	return f.ExclusiveEthnicity != ""
}

// IsRegionSelected は地域が複数選択ハイライトに含まれるか
func (f *FilterState) IsRegionSelected(code string) bool {
	return slices.Contains(f.SelectedRegionIDs, code)
}

// IsBranchSelected は支店が選択されているか
func (f *FilterState) IsBranchSelected(id string) bool {
	return slices.Contains(f.SelectedBranchIDs, id)
}

// IsCulturalSiteSelected は文化施設が選択されているか
func (f *FilterState) IsCulturalSiteSelected(id string) bool {
	return slices.Contains(f.SelectedCulturalSiteIDs, id)
}

// AnyFlag はいずれかのフラグがONか
func AnyFlag(flags map[string]bool) bool {
	for _, v := range flags {
		if v {
			return true
		}
	}
	return false
}
