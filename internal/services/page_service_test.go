package services

import (
	"errors"
	"testing"

	"github.com/civic-action/platform/internal/models"
)

func TestNewCampaignsIndex(t *testing.T) {
	root := &models.Page{PageType: models.PageTypeRoot}
	home := &models.Page{PageType: models.PageTypeHome, URLPath: "/"}

	tests := []struct {
		name    string
		parent  *models.Page
		slug    string
		wantErr bool
	}{
		{"default slug under home", home, "", false},
		{"default slug under root", root, "", false},
		{"explicit campaigns slug", home, "campaigns", false},
		{"other slug", home, "actions", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := newCampaignsIndex(tt.parent, "", tt.slug)
			if tt.wantErr {
				if !errors.Is(err, ErrIndexPathFixed) {
					t.Errorf("expected ErrIndexPathFixed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("newCampaignsIndex() error = %v", err)
			}
			if tt.parent.ChildURLPath(idx.Slug) != models.CampaignsIndexPath {
				t.Errorf("index would be served at %q", tt.parent.ChildURLPath(idx.Slug))
			}
			if idx.PageType != models.PageTypeCampaignsIndex || idx.Title != "Campaigns" || !idx.Live {
				t.Errorf("unexpected index page: %+v", idx)
			}
		})
	}
}
