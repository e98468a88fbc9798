package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ProvinceMap-App/internal/domain/model"
)

func fieldMap(p *model.Popup) map[string]string {
	m := map[string]string{}
	for _, f := range p.Fields {
		m[f.Label] = f.Value
	}
	return m
}

func TestPopup_Branch(t *testing.T) {
	c := NewPopupComposer()
	b := &model.Branch{ID: "1", Name: "PGD Bình An", Latitude: 10.123456, Longitude: 105.98766}
	p := c.ForSearchResult(BranchResult(b), b.ToLatLng())

	assert.Equal(t, "PGD Bình An", p.Title)
	require.Len(t, p.Fields, 2)
	assert.Equal(t, "Phòng giao dịch", p.Fields[0].Value)
	assert.Equal(t, "10.1235, 105.9877", fieldMap(p)["Tọa độ"])
}

func TestPopup_School(t *testing.T) {
	c := NewPopupComposer()
	s := &model.School{ID: "1", Name: "Trường A", Latitude: 10.2, Longitude: 105.9,
		EducationLevel: model.EducationLowerSec, OwnershipType: model.OwnershipEthnicBoarding, RegionName: "Phường 1"}
	p := c.ForSearchResult(SchoolResult(s), s.ToLatLng())

	fields := fieldMap(p)
	assert.Equal(t, "THCS", fields["Cấp"])
	assert.Equal(t, "Dân tộc nội trú", fields["Loại hình"])
	assert.Equal(t, "Phường 1", fields["Xã/Phường"])
	_, hasAddress := fields["Địa chỉ"]
	assert.False(t, hasAddress)
	assert.Equal(t, "10.2000, 105.9000", fields["Tọa độ"])
}

func TestPopup_CulturalSite(t *testing.T) {
	c := NewPopupComposer()
	d := &model.CulturalSite{ID: "1", Name: "Chùa Dơi", Category: "Chùa", Address: "Phường 3", Latitude: 9.6, Longitude: 105.97}
	p := c.ForSearchResult(CulturalSiteResult(d), d.ToLatLng())

	fields := fieldMap(p)
	assert.Equal(t, "Chùa", fields["Loại"])
	assert.Equal(t, "Phường 3", fields["Địa chỉ"])
	assert.Equal(t, "9.6000, 105.9700", fields["Tọa độ"])
}

func TestPopup_RegionSearchResult(t *testing.T) {
	catalog := testCatalog()
	r, _ := catalog.Index.Get("001")
	res := catalog.RegionResult(r)
	p := NewPopupComposer().ForSearchResult(res, *res.Coordinates)

	fields := fieldMap(p)
	assert.Equal(t, "Phường A", fields["Xã/Phường"])
	assert.Equal(t, "001", fields["Mã xã"])
	assert.InDelta(t, 10.225, p.Position.Lat, 1e-9)
}

func TestPopup_RegionDetail(t *testing.T) {
	r := &model.Region{
		Code: "001", Name: "Phường A", Kind: "Phường",
		AreaKm2: 5.5, Population: 12000, DensityPerKm2: 2181.818,
		DominantEthnicity: "Khmer",
		EthnicBreakdown:   []model.EthnicShare{{Ethnicity: "Khmer", Count: 8000, Percentage: 66.7}},
		MergeNote:         "Sáp nhập từ Xã B",
	}
	p := NewPopupComposer().ForRegion(r, model.LatLng{})

	vi := message.NewPrinter(language.Vietnamese)
	fields := fieldMap(p)
	assert.Equal(t, "Phường", fields["Loại"])
	assert.Equal(t, "5.5 km²", fields["Diện tích"])
	assert.Equal(t, vi.Sprintf("%d", 12000), fields["Dân số"])
	assert.Equal(t, "2181.82 người/km²", fields["Mật độ"])
	assert.Equal(t, "Khmer", fields["Dân tộc chủ đạo"])
	assert.Equal(t, vi.Sprintf("%d", 8000)+" người (66.7%)", fields["Khmer"])
	assert.Equal(t, "Sáp nhập từ Xã B", fields["Sáp nhập"])
}

func TestPopup_RegionDetailMissingValues(t *testing.T) {
	p := NewPopupComposer().ForRegion(&model.Region{Code: "x"}, model.LatLng{})
	fields := fieldMap(p)
	assert.Equal(t, "N/A", p.Title)
	assert.Equal(t, "N/A", fields["Loại"])
	assert.Equal(t, "N/A", fields["Dân số"])
	_, ok := fields["Sáp nhập"]
	assert.False(t, ok)
}

func fieldLabels(p *model.Popup) []string {
	labels := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		labels = append(labels, f.Label)
	}
	return labels
}

func TestPopup_MarkerSchoolDetail(t *testing.T) {
	s := &model.School{ID: "1", Name: "Trường A", Latitude: 10.2, Longitude: 105.9,
		EducationLevel: model.EducationPrimary, OwnershipType: model.OwnershipPublic,
		RegionCode: "001", RegionName: "Phường 1", Address: "Ấp 3",
		AddressDetail: &model.SchoolAddress{HouseNumber: "12", Street: "Lê Lợi", Province: "Sóc Trăng"},
		Operator:      "Phòng GD&ĐT", Grades: "1-5",
		Contact: &model.Contact{Phone: "0299 123", Website: "https://a.edu.vn"},
	}
	p := NewPopupComposer().ForMarker(SchoolResult(s), s.ToLatLng())

	assert.Equal(t, []string{"Cấp", "Loại hình", "Mã xã", "Xã/Phường", "Địa chỉ",
		"Địa chỉ chi tiết", "Đơn vị chủ quản", "Khối lớp", "Liên hệ", "Tọa độ"}, fieldLabels(p))
	fields := fieldMap(p)
	assert.Equal(t, "001", fields["Mã xã"])
	assert.Equal(t, "Số nhà: 12; Đường: Lê Lợi; Tỉnh: Sóc Trăng", fields["Địa chỉ chi tiết"])
	assert.Equal(t, "Phòng GD&ĐT", fields["Đơn vị chủ quản"])
	assert.Equal(t, "1-5", fields["Khối lớp"])
	assert.Equal(t, "Điện thoại: 0299 123; Website: https://a.edu.vn", fields["Liên hệ"])
}

func TestPopup_MarkerSchoolEmptyDetail(t *testing.T) {
	s := &model.School{ID: "1", Name: "Trường A", Latitude: 10.2, Longitude: 105.9,
		AddressDetail: &model.SchoolAddress{}, Contact: &model.Contact{}}
	p := NewPopupComposer().ForMarker(SchoolResult(s), s.ToLatLng())

	fields := fieldMap(p)
	for _, label := range []string{"Mã xã", "Địa chỉ chi tiết", "Đơn vị chủ quản", "Khối lớp", "Liên hệ"} {
		_, ok := fields[label]
		assert.False(t, ok, label)
	}
}

func TestPopup_MarkerCulturalSiteDetail(t *testing.T) {
	d := &model.CulturalSite{ID: "9", Name: "Chùa Dơi", Category: "Chùa", RegionCode: "002",
		Description: "Chùa Khmer cổ", Latitude: 9.6, Longitude: 105.97}
	p := NewPopupComposer().ForMarker(CulturalSiteResult(d), d.ToLatLng())

	assert.Equal(t, []string{"Loại", "Mã xã", "Mô tả", "Tọa độ"}, fieldLabels(p))
	assert.Equal(t, "Chùa Khmer cổ", fieldMap(p)["Mô tả"])
}

func TestPopup_MarkerBranchFallsBack(t *testing.T) {
	b := &model.Branch{ID: "1", Name: "PGD Bình An", Latitude: 10.1, Longitude: 105.9}
	c := NewPopupComposer()
	assert.Equal(t, c.ForSearchResult(BranchResult(b), b.ToLatLng()), c.ForMarker(BranchResult(b), b.ToLatLng()))
}
