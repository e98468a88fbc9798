package model

// LayerConstants は地図上で切り替え可能なレイヤーの定数
const (
	LayerEthnicity     = "danToc"
	LayerCulturalSites = "diaDiemVanHoa"
	LayerSchools       = "truongHoc"
)

// EducationLevelConstants は学校の教育段階の定数
const (
	EducationPreschool = "mam_non"
	EducationPrimary   = "tieu_hoc"
	EducationLowerSec  = "thcs"
	EducationUpperSec  = "thpt"
	EducationOther     = "khac"
)

// OwnershipConstants は学校の設置形態の定数
const (
	OwnershipPublic         = "cong_lap"
	OwnershipEthnicBoarding = "dan_toc_noi_tru"
	OwnershipPrivate        = "tu_thuc"
	OwnershipOther          = "khac"
)

// SiteCategoryConstants は文化施設のカテゴリ定数
const (
	SiteCategoryCommunalHouse = "Đình"
	SiteCategoryPagoda        = "Chùa"
	SiteCategoryCulturalHall  = "Nhà văn hóa"
	SiteCategoryTemple        = "Đền"
	SiteCategoryShrine        = "Miếu"
	SiteCategoryOther         = "Khác"
)

// DefaultEthnicity 主要民族が未設定の地域に使う民族名
const DefaultEthnicity = "Kinh"

// EducationLevelLabelMap は教育段階キーから表示名へのマッピング
var EducationLevelLabelMap = map[string]string{
	EducationPreschool: "Mầm non",
	EducationPrimary:   "Tiểu học",
	EducationLowerSec:  "THCS",
	EducationUpperSec:  "THPT",
	EducationOther:     "Khác",
}

// OwnershipLabelMap は設置形態キーから表示名へのマッピング
var OwnershipLabelMap = map[string]string{
	OwnershipPublic:         "Công lập",
	OwnershipEthnicBoarding: "Dân tộc nội trú",
	OwnershipPrivate:        "Tư thục",
	OwnershipOther:          "Khác",
}

// LayerLabelMap はレイヤーキーから表示名へのマッピング
var LayerLabelMap = map[string]string{
	LayerEthnicity:     "Phân bố dân tộc",
	LayerCulturalSites: "Địa điểm văn hóa",
	LayerSchools:       "Trường học",
}

// GetEducationLevelLabel は教育段階キーから表示名を取得する
func GetEducationLevelLabel(level string) string {
	if label, ok := EducationLevelLabelMap[level]; ok {
		return label
	}
	return level // 未知のキーはそのまま返す
}

// GetOwnershipLabel は設置形態キーから表示名を取得する
func GetOwnershipLabel(ownership string) string {
	if label, ok := OwnershipLabelMap[ownership]; ok {
		return label
	}
	return ownership
}

// GetAllLayers は全レイヤーの一覧を取得する
func GetAllLayers() []string {
	return []string{
		LayerEthnicity,
		LayerCulturalSites,
		LayerSchools,
	}
}

// GetFilterableEducationLevels はフィルタ対象の教育段階一覧を取得する
func GetFilterableEducationLevels() []string {
	return []string{
		EducationPreschool,
		EducationPrimary,
		EducationLowerSec,
		EducationUpperSec,
	}
}

// GetFilterableOwnershipTypes はフィルタ対象の設置形態一覧を取得する
func GetFilterableOwnershipTypes() []string {
	return []string{
		OwnershipPublic,
		OwnershipEthnicBoarding,
		OwnershipPrivate,
	}
}

// GetAllSiteCategories は文化施設カテゴリ一覧を取得する
func GetAllSiteCategories() []string {
	return []string{
		SiteCategoryCommunalHouse,
		SiteCategoryPagoda,
		SiteCategoryCulturalHall,
		SiteCategoryTemple,
		SiteCategoryShrine,
		SiteCategoryOther,
	}
}

// BaseLayer 背景地図タイル
type BaseLayer struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// DefaultBaseLayerKey 初期表示の背景地図
const DefaultBaseLayerKey = "default"

// BaseLayers は選択可能な背景地図（表示順）
var BaseLayers = []BaseLayer{
	{Key: "default", Label: "Mặc định", URL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", Attribution: "&copy; OpenStreetMap contributors"},
	{Key: "satellite", Label: "Vệ tinh", URL: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}", Attribution: "Tiles &copy; Esri"},
	{Key: "light", Label: "Sáng", URL: "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png", Attribution: "&copy; OpenStreetMap, &copy; CARTO"},
	{Key: "dark", Label: "Tối", URL: "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png", Attribution: "&copy; OpenStreetMap, &copy; CARTO"},
	{Key: "outdoor", Label: "Ngoài trời", URL: "https://tile.opentopomap.org/{z}/{x}/{y}.png", Attribution: "&copy; OpenTopoMap"},
}

// FindBaseLayer はキーから背景地図を取得する
func FindBaseLayer(key string) (BaseLayer, bool) {
	for _, l := range BaseLayers {
		if l.Key == key {
			return l, true
		}
	}
	return BaseLayer{}, false
}
