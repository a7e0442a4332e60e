package request

import "hotel-booking/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

func (p PaginatedRequest) window() utils.Page {
	return utils.NewPage(p.Page, p.PerPage)
}

func (p PaginatedRequest) Offset() int {
	return p.window().Offset()
}

func (p PaginatedRequest) Limit() int {
	return p.window().Size
}

// Normalize fills in the defaults for missing paging parameters.
func (p *PaginatedRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = utils.DefaultPageSize
	}
}
