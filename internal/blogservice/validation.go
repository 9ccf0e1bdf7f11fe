package blogservice

import "github.com/automaatte/platform/internal/common"

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 200), "title", "must not be more than 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateStatus(v *common.Validator, status BlogStatus) {
	v.Check(common.PermittedValue(status, StatusDraft, StatusPublished, StatusArchived), "status", "must be one of draft, published or archived")
}

func validateID(v *common.Validator, id, field string) {
	v.Check(id != "", field, "must be provided")
}

func validateFilters(v *common.Validator, f *Filters) {
	if f.Status != "" {
		validateStatus(v, f.Status)
	}
	if f.SortBy != "" {
		v.Check(common.PermittedValue(f.SortBy, "created_at", "updated_at", "published_at", "title", "view_count", "like_count", "rating"), "sort_by", "invalid sort field")
	}
	if f.SortOrder != "" {
		v.Check(common.PermittedValue(f.SortOrder, "asc", "desc"), "sort_order", "must be asc or desc")
	}
	v.Check(f.Limit >= 0, "limit", "must not be negative")
	v.Check(f.Offset >= 0, "offset", "must not be negative")
}
