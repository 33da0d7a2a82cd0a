package domain

type OffsetParams struct {
	Offset int `json:"offset" query:"offset"`
	Limit  int `json:"limit" query:"limit"`
}

func DefaultOffsetParams() OffsetParams {
	return OffsetParams{
		Offset: 0,
		Limit:  40,
	}
}

func (p *OffsetParams) Validate() {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}
