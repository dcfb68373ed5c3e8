package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanCreateUnder(t *testing.T) {
	tests := []struct {
		child    string
		parent   string
		expected bool
	}{
		{PageTypeCampaignsIndex, PageTypeHome, true},
		{PageTypeCampaignsIndex, PageTypeRoot, true},
		{PageTypeCampaign, PageTypeCampaignsIndex, true},
		{PageTypeHome, PageTypeRoot, true},

		{PageTypeCampaign, PageTypeHome, false},
		{PageTypeCampaign, PageTypeCampaign, false},
		{PageTypeCampaignsIndex, PageTypeCampaign, false},
		{PageTypeCampaignsIndex, PageTypeCampaignsIndex, false},
		{PageTypeHome, PageTypeCampaignsIndex, false},
		{"blog", PageTypeHome, false},
		{PageTypeCampaign, "blog", false},
	}

	for _, tt := range tests {
		if got := CanCreateUnder(tt.child, tt.parent); got != tt.expected {
			t.Errorf("CanCreateUnder(%s, %s) = %v, want %v", tt.child, tt.parent, got, tt.expected)
		}
	}
}

func TestMaxPageCount(t *testing.T) {
	if MaxPageCount(PageTypeCampaignsIndex) != 1 {
		t.Error("campaigns index should be capped at one")
	}
	if MaxPageCount(PageTypeCampaign) != 0 {
		t.Error("campaign pages should be unlimited")
	}
}

func TestChildURLPath(t *testing.T) {
	root := &Page{PageType: PageTypeRoot}
	home := &Page{PageType: PageTypeHome, URLPath: "/"}
	index := &Page{PageType: PageTypeCampaignsIndex, URLPath: "/campaigns/"}

	if got := root.ChildURLPath("campaigns"); got != "/campaigns/" {
		t.Errorf("root child = %q", got)
	}
	if got := home.ChildURLPath("campaigns"); got != "/campaigns/" {
		t.Errorf("home child = %q", got)
	}
	if got := index.ChildURLPath("bike-lanes"); got != "/campaigns/bike-lanes/" {
		t.Errorf("index child = %q", got)
	}
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDonationProgress(t *testing.T) {
	tests := []struct {
		name     string
		goal     *int
		total    *decimal.Decimal
		expected int
	}{
		{"no goal no total", nil, nil, 0},
		{"no goal with total", nil, decPtr("50"), 0},
		{"goal without total", intPtr(1000), nil, 100},
		{"goal with zero total", intPtr(1000), decPtr("0"), 100},
		{"half way", intPtr(1000), decPtr("500"), 50},
		{"truncates", intPtr(3), decPtr("1"), 33},
		{"capped", intPtr(100), decPtr("250.50"), 100},
		{"zero goal", intPtr(0), decPtr("10"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DonationProgress(tt.goal, tt.total); got != tt.expected {
				t.Errorf("DonationProgress = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestHasActions(t *testing.T) {
	page := NewCampaignPage("Bike lanes", "bike-lanes")
	if page.HasActions(0) {
		t.Error("new page has no actions")
	}
	if !page.HasActions(2) {
		t.Error("linked events count as actions")
	}

	page.Body = Stream{NewTextBlock(BlockTypeHTML, "<p>x</p>")}
	if page.HasActions(0) {
		t.Error("html block is not an action")
	}
	page.Body = append(page.Body, Block{ID: "p", Type: BlockTypePetition})
	if !page.HasActions(0) {
		t.Error("petition block is an action")
	}

	page.Body = nil
	page.SubscriptionAction = true
	if !page.HasActions(0) {
		t.Error("subscription action is an action")
	}
}

func TestCampaignStatusColor(t *testing.T) {
	if CampaignStatusColor(CampaignStatusActive) != "#28a745" {
		t.Error("unexpected active colour")
	}
	if CampaignStatusColor("unknown") != "#000" {
		t.Error("unknown status should fall back to black")
	}
}
