package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/infrastructure/database"
)

type restRecorder struct {
	mu      sync.Mutex
	queries map[string]url.Values
}

func (r *restRecorder) record(table string, q url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[table] = q
}

func (r *restRecorder) query(table string) url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[table]
}

func newSupabaseAPI(t *testing.T, bodies map[string]string) (*SupabaseDatasetRepository, *restRecorder) {
	t.Helper()
	rec := &restRecorder{queries: map[string]url.Values{}}
	mux := http.NewServeMux()
	for table, body := range bodies {
		table, body := table, body
		mux.HandleFunc("/rest/v1/"+table, func(w http.ResponseWriter, r *http.Request) {
			rec.record(table, r.URL.Query())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := database.NewSupabaseClient(srv.URL, "anon-key")
	require.NoError(t, err)
	return NewSupabaseDatasetRepository(client), rec
}

func TestSupabaseDatasetRepository_PointTables(t *testing.T) {
	repo, _ := newSupabaseAPI(t, map[string]string{
		supabaseBranchTable: `[{"id": 7, "ten": "PGD Vĩnh Long", "vi_do": 10.25, "kinh_do": 105.97}]`,
		supabaseSchoolTable: `[{
			"id": 12, "ten": "Trường THCS Long Phước", "vi_do": 10.21, "kinh_do": 105.93,
			"cap_hoc": "thcs", "loai_hinh": "cong_lap", "ma_xa": 29212, "ten_xa": "Xã Long Phước",
			"address": {"so_nha": "12", "duong": "Lê Lợi"}, "operator": "Phòng GD&ĐT", "grades": "6-9",
			"lien_he": {"phone": "0299 123"}
		}, {
			"id": "th-2", "ten": "Trường MN Hoa Sen", "vi_do": 10.2, "kinh_do": 105.9,
			"ma_xa": null, "address": null, "lien_he": null
		}]`,
		supabaseSiteTable: `[{"id": 100, "ten_dia_diem": "Chùa Dơi", "vi_do": 9.6, "kinh_do": 105.97,
			"loai_dia_diem": "Chùa", "ma_xa": "29212", "mo_ta": "Chùa Khmer cổ"}]`,
	})
	ctx := context.Background()

	branches, err := repo.GetBranches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, model.EntityID("7"), branches[0].ID)

	schools, err := repo.GetSchools(ctx)
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, model.EntityID("29212"), schools[0].RegionCode)
	assert.Equal(t, &model.SchoolAddress{HouseNumber: "12", Street: "Lê Lợi"}, schools[0].AddressDetail)
	assert.Equal(t, "Phòng GD&ĐT", schools[0].Operator)
	assert.Equal(t, "6-9", schools[0].Grades)
	assert.Equal(t, &model.Contact{Phone: "0299 123"}, schools[0].Contact)
	assert.Equal(t, model.EntityID("th-2"), schools[1].ID)
	assert.Empty(t, schools[1].RegionCode)
	assert.True(t, schools[1].AddressDetail.IsEmpty())
	assert.True(t, schools[1].Contact.IsEmpty())

	sites, err := repo.GetCulturalSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Chùa Khmer cổ", sites[0].Description)
	assert.Equal(t, model.EntityID("29212"), sites[0].RegionCode)
}

func TestSupabaseDatasetRepository_Searches(t *testing.T) {
	repo, rec := newSupabaseAPI(t, map[string]string{
		supabaseEthnicityView: `[{"ma_xa": "29212", "ten_xa": "Xã Long Phước", "loai": "Xã", "dan_toc": "Khmer", "so_luong": 500, "ty_le": 2.7}]`,
		supabaseRegionView:    `[{"ma_xa": 29212, "ten_xa": "Xã Long Phước", "loai": "Xã", "dan_so": 18500}]`,
	})
	ctx := context.Background()

	cases := []struct {
		name   string
		search func() (any, error)
		table  string
		column string
		want   any
	}{
		{
			name:   "民族検索",
			search: func() (any, error) { return repo.SearchEthnicity(ctx, "khmer") },
			table:  supabaseEthnicityView,
			column: "dan_toc",
			want: []model.EthnicitySearchHit{{
				RegionCode: "29212", RegionName: "Xã Long Phước", Kind: "Xã", Ethnicity: "Khmer", Count: 500, Percentage: 2.7,
			}},
		},
		{
			name:   "地域検索",
			search: func() (any, error) { return repo.SearchRegions(ctx, "long_phước") },
			table:  supabaseRegionView,
			column: "ten_xa",
			want:   []model.RegionSearchHit{{RegionCode: "29212", RegionName: "Xã Long Phước", Kind: "Xã", Population: 18500}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.search()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			q := rec.query(tc.table)
			require.NotNil(t, q)
			assert.Equal(t, "20", q.Get("limit"))
			assert.Contains(t, q.Get(tc.column), "ilike.%")
		})
	}

	assert.Equal(t, `ilike.%long\_phước%`, rec.query(supabaseRegionView).Get("ten_xa"), "ワイルドカード文字はエスケープする")
}

func TestSupabaseDatasetRepository_RegionBoundaries(t *testing.T) {
	repo, _ := newSupabaseAPI(t, map[string]string{
		supabaseRegionView: `[{
			"ma_xa": "29212", "ten_xa": "Xã Long Phước", "loai": "Xã", "dan_so": 18500, "dtich_km2": 32.5,
			"dan_toc_chu_dao": "Kinh", "sap_nhap": null,
			"dan_toc_phan_bo": [{"dan_toc": "Kinh", "so_luong": 18000, "ty_le": 97.3}],
			"geometry": {"type": "Polygon", "coordinates": [[[105.9,10.2],[106.0,10.2],[106.0,10.3],[105.9,10.2]]]}
		}]`,
	})

	body, err := repo.RegionBoundaries(context.Background())
	require.NoError(t, err)
	regions, err := helper.DecodeRegionCollection(body)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "29212", regions[0].Code)
	assert.Equal(t, "Kinh", regions[0].DominantEthnicity)
	assert.Empty(t, regions[0].MergeNote)
}

func TestDecodeRows(t *testing.T) {
	var hits []model.RegionSearchHit
	require.NoError(t, decodeRows("phuong_xa", []byte(`[]`), &hits))
	assert.Empty(t, hits)

	err := decodeRows("phuong_xa", []byte(`{"message": "relation does not exist"}`), &hits)
	assert.ErrorContains(t, err, "phuong_xa")
}
