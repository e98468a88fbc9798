package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// LatLng 緯度経度を表す基本的な型（内部では常に緯度・経度の順）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToPoint orb.Point（経度・緯度の順）に変換
func (l LatLng) ToPoint() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// LatLngFromPoint orb.Point を LatLng に変換
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// String 座標を小数点以下4桁で表示する
func (l LatLng) String() string {
	return fmt.Sprintf("%.4f, %.4f", l.Lat, l.Lng)
}

// EntityID 数値・文字列どちらのJSONでも受け取れるID
type EntityID string

// UnmarshalJSON 数値IDは10進文字列として保持する
func (id *EntityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("IDの形式が不正です: %s", string(data))
	}
	*id = EntityID(n.String())
	return nil
}

// Branch 支店（phòng giao dịch）
type Branch struct {
	ID        EntityID `json:"id"`
	Name      string   `json:"ten"`
	Latitude  float64  `json:"vi_do"`
	Longitude float64  `json:"kinh_do"`
}

// ToLatLng 支店の位置をLatLng型に変換
func (b *Branch) ToLatLng() LatLng {
	return LatLng{Lat: b.Latitude, Lng: b.Longitude}
}

// SchoolAddress 学校の詳細住所
type SchoolAddress struct {
	HouseNumber string `json:"so_nha,omitempty"`
	Street      string `json:"duong,omitempty"`
	Ward        string `json:"phuong_xa,omitempty"`
	District    string `json:"quan_huyen,omitempty"`
	Province    string `json:"tinh,omitempty"`
	City        string `json:"thanh_pho,omitempty"`
}

// IsEmpty 住所項目が一つも無いか
func (a *SchoolAddress) IsEmpty() bool {
	return a == nil || (a.HouseNumber == "" && a.Street == "" && a.Ward == "" &&
		a.District == "" && a.Province == "" && a.City == "")
}

// Contact 学校の連絡先
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// IsEmpty 連絡先が一つも無いか
func (c *Contact) IsEmpty() bool {
	return c == nil || (c.Phone == "" && c.Email == "" && c.Website == "")
}

// School 学校
type School struct {
	ID             EntityID       `json:"id"`
	Name           string         `json:"ten"`
	Latitude       float64        `json:"vi_do"`
	Longitude      float64        `json:"kinh_do"`
	EducationLevel string         `json:"cap_hoc"`   // mam_non, tieu_hoc, thcs, thpt
	OwnershipType  string         `json:"loai_hinh"` // cong_lap, dan_toc_noi_tru, tu_thuc
	RegionCode     EntityID       `json:"ma_xa"`
	RegionName     string         `json:"ten_xa"`
	Address        string         `json:"dia_chi"`
	AddressDetail  *SchoolAddress `json:"address,omitempty"`
	Operator       string         `json:"operator,omitempty"`
	Grades         string         `json:"grades,omitempty"`
	Contact        *Contact       `json:"lien_he,omitempty"`
}

// ToLatLng 学校の位置をLatLng型に変換
func (s *School) ToLatLng() LatLng {
	return LatLng{Lat: s.Latitude, Lng: s.Longitude}
}

// CulturalSite 文化施設（đình, chùa, nhà văn hóa など）
type CulturalSite struct {
	ID          EntityID `json:"id"`
	Name        string   `json:"ten_dia_diem"`
	Latitude    float64  `json:"vi_do"`
	Longitude   float64  `json:"kinh_do"`
	Category    string   `json:"loai_dia_diem"`
	RegionCode  EntityID `json:"ma_xa"`
	RegionName  string   `json:"ten_xa"`
	Address     string   `json:"dia_chi"`
	Description string   `json:"mo_ta"`
}

// ToLatLng 文化施設の位置をLatLng型に変換
func (c *CulturalSite) ToLatLng() LatLng {
	return LatLng{Lat: c.Latitude, Lng: c.Longitude}
}

// CategoryOrDefault カテゴリ未設定の施設は「Khác」として扱う
func (c *CulturalSite) CategoryOrDefault() string {
	if strings.TrimSpace(c.Category) == "" {
		return SiteCategoryOther
	}
	return c.Category
}
