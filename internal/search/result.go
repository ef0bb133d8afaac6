package search

import "github.com/davidjirca/dreamhome/internal/entity"

// Result is one page of search results plus pagination metadata. This is the
// unit stored in the result cache, replaced wholesale and never patched.
type Result struct {
	Items      []*entity.Property `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

func NewResult(items []*entity.Property, total int64, f *FilterSet) *Result {
	pages := int(total) / f.PageSize
	if int(total)%f.PageSize != 0 {
		pages++
	}
	if items == nil {
		items = []*entity.Property{}
	}
	return &Result{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: pages,
	}
}
