package models

import (
	"time"

	"github.com/google/uuid"
)

// Page types
const (
	PageTypeRoot           = "root"
	PageTypeHome           = "home"
	PageTypeCampaignsIndex = "campaigns_index"
	PageTypeCampaign       = "campaign"
)

// The campaigns index is served from a fixed location; public routes are
// mounted under CampaignsIndexPath.
const (
	CampaignsIndexSlug = "campaigns"
	CampaignsIndexPath = "/campaigns/"
)

type pageTypeRule struct {
	parentTypes  []string
	subpageTypes []string
	maxCount     int // 0 = unlimited
}

// pageTypeRules mirrors the page tree constraints: which parents a type may be
// created under, which children it accepts and how many instances may exist.
var pageTypeRules = map[string]pageTypeRule{
	PageTypeRoot:           {parentTypes: nil, subpageTypes: []string{PageTypeHome, PageTypeCampaignsIndex}, maxCount: 1},
	PageTypeHome:           {parentTypes: []string{PageTypeRoot}, subpageTypes: []string{PageTypeCampaignsIndex}},
	PageTypeCampaignsIndex: {parentTypes: []string{PageTypeHome, PageTypeRoot}, subpageTypes: []string{PageTypeCampaign}, maxCount: 1},
	PageTypeCampaign:       {parentTypes: []string{PageTypeCampaignsIndex}, subpageTypes: []string{}},
}

// CanCreateUnder checks that a page of childType may be added below a page of parentType.
// Both sides must agree: the child lists the parent and the parent lists the child.
func CanCreateUnder(childType, parentType string) bool {
	child, ok := pageTypeRules[childType]
	if !ok {
		return false
	}
	parent, ok := pageTypeRules[parentType]
	if !ok {
		return false
	}
	return contains(child.parentTypes, parentType) && contains(parent.subpageTypes, childType)
}

// MaxPageCount returns the instance cap for a page type, 0 when unlimited.
func MaxPageCount(pageType string) int {
	return pageTypeRules[pageType].maxCount
}

type Page struct {
	ID               uuid.UUID  `json:"id"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	PageType         string     `json:"page_type"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	URLPath          string     `json:"url_path"`
	Depth            int        `json:"depth"`
	SortOrder        int        `json:"sort_order"`
	Live             bool       `json:"live"`
	ShowInMenus      bool       `json:"show_in_menus"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ChildURLPath builds the url path of a child page with the given slug.
// Children of the root page are served from the site root.
func (p *Page) ChildURLPath(slug string) string {
	if p.PageType == PageTypeRoot {
		return "/" + slug + "/"
	}
	return p.URLPath + slug + "/"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
