package models

// CustomAPICompany is the payload shape of the self-hosted lookup API
// (GET <base>/<taxCode>). Field names follow the upstream contract.
type CustomAPICompany struct {
	MaSoThue     string `json:"MaSoThue"`
	Title        string `json:"Title"`
	TitleEn      string `json:"TitleEn"`
	TitleEnAscii string `json:"TitleEnAscii"`
	DiaChiCongTy string `json:"DiaChiCongTy"`
}

// VietQRResponse is the envelope returned by the public registry API
// (https://api.vietqr.io/v2/business/<taxCode>). Code "00" means success.
type VietQRResponse struct {
	Code string         `json:"code"`
	Desc string         `json:"desc"`
	Data *VietQRCompany `json:"data"`
}

// VietQRCompany is the business record inside a VietQRResponse.
type VietQRCompany struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	InternationalName string `json:"internationalName"`
	ShortName         string `json:"shortName"`
	Address           string `json:"address"`
}
