package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ProvinceMap-App/internal/domain/model"
)

// 固定のポップアップ文言
const (
	UserLocationTitle = "Vị trí của bạn"
	RouteStartTitle   = "Điểm bắt đầu"
)

// PopupComposer は地図上のポップアップ本文を組み立てる。数値はvi-VN表記
type PopupComposer struct {
	printer *message.Printer
}

// NewPopupComposer は新しいPopupComposerを作成する
func NewPopupComposer() *PopupComposer {
	return &PopupComposer{printer: message.NewPrinter(language.Vietnamese)}
}

// ForSearchResult は検索結果を選択したときのポップアップを作る
func (c *PopupComposer) ForSearchResult(res model.SearchResult, at model.LatLng) *model.Popup {
	p := &model.Popup{Title: res.Label, Position: at, Fields: []model.PopupField{}}

	switch res.EntityType {
	case model.EntityBranch:
		p.Fields = append(p.Fields, model.PopupField{Value: "Phòng giao dịch"})
		if b := res.Branch; b != nil && b.Latitude != 0 && b.Longitude != 0 {
			p.Fields = append(p.Fields, coordsField(b.ToLatLng()))
		}
	case model.EntitySchool:
		if s := res.School; s != nil {
			p.Fields = append(p.Fields,
				model.PopupField{Label: "Cấp", Value: model.GetEducationLevelLabel(s.EducationLevel)},
				model.PopupField{Label: "Loại hình", Value: model.GetOwnershipLabel(s.OwnershipType)},
			)
			p.Fields = appendIf(p.Fields, "Xã/Phường", s.RegionName)
			p.Fields = appendIf(p.Fields, "Địa chỉ", s.Address)
			if s.Latitude != 0 && s.Longitude != 0 {
				p.Fields = append(p.Fields, coordsField(s.ToLatLng()))
			}
		}
	case model.EntityCulturalSite:
		if d := res.CulturalSite; d != nil {
			p.Fields = appendIf(p.Fields, "Loại", d.Category)
			p.Fields = appendIf(p.Fields, "Xã/Phường", d.RegionName)
			p.Fields = appendIf(p.Fields, "Địa chỉ", d.Address)
			if d.Latitude != 0 && d.Longitude != 0 {
				p.Fields = append(p.Fields, coordsField(d.ToLatLng()))
			}
		}
	case model.EntityRegion:
		if r := res.Region; r != nil {
			p.Fields = appendIf(p.Fields, "Xã/Phường", r.Name)
			p.Fields = appendIf(p.Fields, "Mã xã", r.Code)
		}
	}
	return p
}

// ForMarker はマーカーのポップアップを作る。学校と文化施設は詳細項目も載せる
func (c *PopupComposer) ForMarker(res model.SearchResult, at model.LatLng) *model.Popup {
	switch {
	case res.EntityType == model.EntitySchool && res.School != nil:
		s := res.School
		p := &model.Popup{Title: res.Label, Position: at, Fields: []model.PopupField{
			{Label: "Cấp", Value: model.GetEducationLevelLabel(s.EducationLevel)},
			{Label: "Loại hình", Value: model.GetOwnershipLabel(s.OwnershipType)},
		}}
		p.Fields = appendIf(p.Fields, "Mã xã", string(s.RegionCode))
		p.Fields = appendIf(p.Fields, "Xã/Phường", s.RegionName)
		p.Fields = appendIf(p.Fields, "Địa chỉ", s.Address)
		if !s.AddressDetail.IsEmpty() {
			a := s.AddressDetail
			p.Fields = append(p.Fields, model.PopupField{Label: "Địa chỉ chi tiết", Value: joinLabeled(
				"Số nhà", a.HouseNumber,
				"Đường", a.Street,
				"Phường/Xã", a.Ward,
				"Quận/Huyện", a.District,
				"Tỉnh", a.Province,
				"Thành phố", a.City,
			)})
		}
		p.Fields = appendIf(p.Fields, "Đơn vị chủ quản", s.Operator)
		p.Fields = appendIf(p.Fields, "Khối lớp", s.Grades)
		if !s.Contact.IsEmpty() {
			p.Fields = append(p.Fields, model.PopupField{Label: "Liên hệ", Value: joinLabeled(
				"Điện thoại", s.Contact.Phone,
				"Email", s.Contact.Email,
				"Website", s.Contact.Website,
			)})
		}
		p.Fields = append(p.Fields, coordsField(s.ToLatLng()))
		return p

	case res.EntityType == model.EntityCulturalSite && res.CulturalSite != nil:
		d := res.CulturalSite
		p := &model.Popup{Title: res.Label, Position: at, Fields: []model.PopupField{}}
		p.Fields = appendIf(p.Fields, "Loại", d.Category)
		p.Fields = appendIf(p.Fields, "Xã/Phường", d.RegionName)
		p.Fields = appendIf(p.Fields, "Mã xã", string(d.RegionCode))
		p.Fields = appendIf(p.Fields, "Địa chỉ", d.Address)
		p.Fields = appendIf(p.Fields, "Mô tả", d.Description)
		p.Fields = append(p.Fields, coordsField(d.ToLatLng()))
		return p
	}
	return c.ForSearchResult(res, at)
}

// ForRegion は地域をクリックしたときの詳細ポップアップを作る
func (c *PopupComposer) ForRegion(r *model.Region, at model.LatLng) *model.Popup {
	title := r.Name
	if title == "" {
		title = "N/A"
	}
	p := &model.Popup{Title: title, Position: at}
	p.Fields = append(p.Fields,
		model.PopupField{Label: "Loại", Value: orNA(r.Kind)},
		model.PopupField{Label: "Diện tích", Value: fmt.Sprintf("%g km²", r.AreaKm2)},
	)
	if r.Population > 0 {
		p.Fields = append(p.Fields, model.PopupField{Label: "Dân số", Value: c.printer.Sprintf("%d", r.Population)})
	} else {
		p.Fields = append(p.Fields, model.PopupField{Label: "Dân số", Value: "N/A"})
	}
	if r.DensityPerKm2 > 0 {
		p.Fields = append(p.Fields, model.PopupField{Label: "Mật độ", Value: fmt.Sprintf("%.2f người/km²", r.DensityPerKm2)})
	} else {
		p.Fields = append(p.Fields, model.PopupField{Label: "Mật độ", Value: "N/A người/km²"})
	}
	p.Fields = appendIf(p.Fields, "Dân tộc chủ đạo", r.DominantEthnicity)
	for _, share := range r.EthnicBreakdown {
		p.Fields = append(p.Fields, model.PopupField{
			Label: share.Ethnicity,
			Value: c.printer.Sprintf("%d", share.Count) + fmt.Sprintf(" người (%g%%)", share.Percentage),
		})
	}
	p.Fields = appendIf(p.Fields, "Sáp nhập", r.MergeNote)
	return p
}

// ForTitle はタイトルだけのポップアップ（現在地・出発地点）
func (c *PopupComposer) ForTitle(title string, at model.LatLng) *model.Popup {
	return &model.Popup{Title: title, Position: at, Fields: []model.PopupField{}}
}

func coordsField(p model.LatLng) model.PopupField {
	return model.PopupField{Label: "Tọa độ", Value: p.String()}
}

func appendIf(fields []model.PopupField, label, value string) []model.PopupField {
	if value == "" {
		return fields
	}
	return append(fields, model.PopupField{Label: label, Value: value})
}

// joinLabeled は「ラベル, 値」の組を空でないものだけ「ラベル: 値」で連結する
func joinLabeled(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			parts = append(parts, pairs[i]+": "+pairs[i+1])
		}
	}
	return strings.Join(parts, "; ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
