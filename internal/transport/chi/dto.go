package chi

import (
	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/request"
	"github.com/stacklens/stacklens/internal/domain/search/result"
)

// facetFilterDTO is one facet filter as clients send it.
type facetFilterDTO struct {
	And              []string `json:"and"`
	Or               []string `json:"or"`
	None             []string `json:"none"`
	RemoveDuplicates bool     `json:"removeDuplicates"`
	FilteringType    string   `json:"filteringType"`
}

// numberFilterDTO carries the post-aggregation thresholds.
type numberFilterDTO struct {
	TotalTechnologies       uint `json:"totalTechnologies"`
	TechnologiesPerCategory uint `json:"technologiesPerCategory"`
}

// searchObjectDTO is the full structured-search payload.
type searchObjectDTO struct {
	TechnologyFilter facetFilterDTO  `json:"technologyFilter"`
	CountryFilter    facetFilterDTO  `json:"countryFilter"`
	CategoryFilter   facetFilterDTO  `json:"categoryFilter"`
	NameFilter       facetFilterDTO  `json:"nameFilter"`
	DomainFilter     facetFilterDTO  `json:"domainFilter"`
	NumberFilter     numberFilterDTO `json:"numberFilter"`
}

// searchRequestBody accepts both a flat search object and the wrapped
// { "searchObject": { ... } } form older clients send. An optional
// textQuery upgrades the request to a combined search.
type searchRequestBody struct {
	searchObjectDTO
	SearchObject *searchObjectDTO `json:"searchObject"`
	TextQuery    string           `json:"textQuery"`
}

func (b *searchRequestBody) normalized() searchObjectDTO {
	if b.SearchObject != nil {
		return *b.SearchObject
	}
	return b.searchObjectDTO
}

func filterFromDTO(dto facetFilterDTO) filter.Spec {
	return filter.New(dto.And, dto.Or, dto.None, filter.ParseStrategy(dto.FilteringType), dto.RemoveDuplicates)
}

func requestFromDTO(dto searchObjectDTO) request.Request {
	return request.Request{
		Technology: filterFromDTO(dto.TechnologyFilter),
		Country:    filterFromDTO(dto.CountryFilter),
		Category:   filterFromDTO(dto.CategoryFilter),
		Name:       filterFromDTO(dto.NameFilter),
		Domain:     filterFromDTO(dto.DomainFilter),
		Thresholds: filter.NewThresholds(dto.NumberFilter.TotalTechnologies, dto.NumberFilter.TechnologiesPerCategory),
	}
}

// companyRowDTO is one assembled result row.
type companyRowDTO struct {
	Domain       string  `json:"domain"`
	Name         *string `json:"name"`
	Category     *string `json:"category"`
	Country      *string `json:"country"`
	City         *string `json:"city"`
	Technologies uint    `json:"technologies"`
}

func rowsToDTO(rows []result.Row) []companyRowDTO {
	out := make([]companyRowDTO, len(rows))
	for i, row := range rows {
		out[i] = companyRowDTO{
			Domain:       row.Domain,
			Name:         row.Name,
			Category:     row.Category,
			Country:      row.Country,
			City:         row.City,
			Technologies: row.Technologies,
		}
	}
	return out
}

// searchResponse is the envelope structured-search results ship in.
type searchResponse struct {
	Success         bool            `json:"success"`
	Data            []companyRowDTO `json:"data"`
	TotalResults    int             `json:"totalResults"`
	ExecutionTimeMS int64           `json:"executionTime"`
}

// combinedSearchResponse returns matching IDs only.
type combinedSearchResponse struct {
	Success         bool     `json:"success"`
	Domains         []string `json:"domains"`
	TotalResults    int      `json:"totalResults"`
	ExecutionTimeMS int64    `json:"executionTime"`
}
