package lookup

import (
	"context"

	"github.com/thetechguyfromvietnam/tax-info/internal/format"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
)

// fallbackCompanies covers frequent customers so lookups keep working when
// both APIs are down or rate limited.
var fallbackCompanies = map[string]models.CompanyLookupResult{
	"3901212654": {
		TaxCode:     "3901212654",
		CompanyName: "Công Ty TNHH Mtv Ngô Trọng Phát",
		Address:     "Tổ 2, Ấp Trường Thọ, Xã Trường Hòa, Thị Xã Hòa Thành, Tỉnh Tây Ninh",
	},
	"0316794479": {
		TaxCode:       "0316794479",
		CompanyName:   "Công Ty TNHH Thương Mại Dịch Vụ Kỹ Thuật Số Sài Gòn",
		CompanyNameEn: "Saigon Digital Trading Service Company Limited",
		ShortName:     "Saigon Digital",
		Address:       "25/7 Nguyễn Bỉnh Khiêm, Phường Bến Nghé, Quận 1, TP. Hồ Chí Minh",
	},
	"0109106858": {
		TaxCode:     "0109106858",
		CompanyName: "Công Ty Cổ Phần Giải Pháp Phần Mềm Hà Nội",
		ShortName:   "HanoiSoft",
		Address:     "Số 8 Phạm Hùng, Phường Mễ Trì, Quận Nam Từ Liêm, Hà Nội",
	},
}

// staticSource serves the in-repo fallback table by exact tax code match.
type staticSource struct{}

// NewStaticSource creates the fallback-table source
func NewStaticSource() Source {
	return &staticSource{}
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Resolve(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error) {
	company, ok := fallbackCompanies[taxCode]
	if !ok {
		return nil, ErrNotFound
	}
	company.Success = true
	company.Address = format.Address(company.Address)
	return &company, nil
}
