package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/civic-action/platform/internal/htmltext"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// errDryRun aborts the transaction of a dry run after all work is done.
var errDryRun = errors.New("dry run")

const descriptionExcerptLen = 280

type migrationPages interface {
	FirstOfType(ctx context.Context, pageType string) (*models.Page, error)
	AddChild(ctx context.Context, parent *models.Page, p *models.Page) error
}

type migrationCampaigns interface {
	Create(ctx context.Context, parent *models.Page, cp *models.CampaignPage) error
	GetByLegacyID(ctx context.Context, legacyID uuid.UUID) (*models.CampaignPage, error)
	AddEvent(ctx context.Context, pageID, eventID uuid.UUID, sortOrder int) error
}

type legacySource interface {
	List(ctx context.Context) ([]models.LegacyCampaign, error)
	Petitions(ctx context.Context, campaignID uuid.UUID) ([]models.Petition, error)
	EventIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

type imageStore interface {
	GetOrCreateByTitle(ctx context.Context, title, file string) (*models.Image, error)
}

type redirectStore interface {
	GetOrCreate(ctx context.Context, oldPath string, pageID uuid.UUID) (*models.Redirect, bool, error)
}

// MigrationStores are the writers of one migration transaction.
type MigrationStores struct {
	Pages     migrationPages
	Campaigns migrationCampaigns
	Legacy    legacySource
	Images    imageStore
	Redirects redirectStore
}

// MigrationTx runs fn inside one transaction, rolling back when fn fails.
type MigrationTx func(ctx context.Context, fn func(MigrationStores) error) error

// PostgresMigrationTx binds the stores to a pgx transaction. Images are
// written under a savepoint so a failed image does not abort the run.
func PostgresMigrationTx(pool *pgxpool.Pool) MigrationTx {
	return func(ctx context.Context, fn func(MigrationStores) error) error {
		return repositories.RunInTx(ctx, pool, func(tx pgx.Tx) error {
			return fn(MigrationStores{
				Pages:     repositories.NewPageRepo(tx),
				Campaigns: repositories.NewCampaignPageRepo(tx),
				Legacy:    repositories.NewLegacyCampaignRepo(tx),
				Images:    savepointImages{tx: tx},
				Redirects: repositories.NewRedirectRepo(tx),
			})
		})
	}
}

type savepointImages struct {
	tx pgx.Tx
}

func (s savepointImages) GetOrCreateByTitle(ctx context.Context, title, file string) (*models.Image, error) {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	img, err := repositories.NewImageRepo(sp).GetOrCreateByTitle(ctx, title, file)
	if err != nil {
		_ = sp.Rollback(ctx)
		return nil, err
	}
	return img, sp.Commit(ctx)
}

type MigrationReport struct {
	DryRun       bool     `json:"dry_run"`
	IndexCreated bool     `json:"index_created"`
	Found        int      `json:"found"`
	Migrated     []string `json:"migrated"`
	Skipped      []string `json:"skipped"`
	Redirects    int      `json:"redirects"`
	Warnings     []string `json:"warnings,omitempty"`
}

// MigrationService moves legacy campaigns into the page tree.
type MigrationService struct {
	runTx MigrationTx
	log   *zap.Logger
}

func NewMigrationService(runTx MigrationTx, log *zap.Logger) *MigrationService {
	return &MigrationService{runTx: runTx, log: log}
}

// MigrateCampaigns copies every legacy campaign not yet migrated in a single
// transaction. A dry run does all the work and then rolls back.
func (s *MigrationService) MigrateCampaigns(ctx context.Context, dryRun bool) (*MigrationReport, error) {
	report := &MigrationReport{DryRun: dryRun}

	err := s.runTx(ctx, func(st MigrationStores) error {
		index, created, err := s.campaignsIndex(ctx, st)
		if err != nil {
			return fmt.Errorf("campaigns index: %w", err)
		}
		report.IndexCreated = created

		legacy, err := st.Legacy.List(ctx)
		if err != nil {
			return fmt.Errorf("list legacy campaigns: %w", err)
		}
		report.Found = len(legacy)
		s.log.Info("migrating campaigns", zap.Int("found", len(legacy)), zap.Bool("dry_run", dryRun))

		for i := range legacy {
			if err := s.migrateOne(ctx, st, index, &legacy[i], report); err != nil {
				return fmt.Errorf("campaign %q: %w", legacy[i].Slug, err)
			}
		}
		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}
	return report, nil
}

// campaignsIndex finds the index or creates it under home, falling back to the root page.
func (s *MigrationService) campaignsIndex(ctx context.Context, st MigrationStores) (*models.Page, bool, error) {
	idx, err := st.Pages.FirstOfType(ctx, models.PageTypeCampaignsIndex)
	if err == nil {
		return idx, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	parent, err := st.Pages.FirstOfType(ctx, models.PageTypeHome)
	if errors.Is(err, repositories.ErrNotFound) {
		s.log.Warn("no home page found, using root page")
		parent, err = st.Pages.FirstOfType(ctx, models.PageTypeRoot)
	}
	if err != nil {
		return nil, false, err
	}

	if idx, err = newCampaignsIndex(parent, "", ""); err != nil {
		return nil, false, err
	}
	if err := st.Pages.AddChild(ctx, parent, idx); err != nil {
		return nil, false, err
	}
	s.log.Info("created campaigns index page", zap.String("url_path", idx.URLPath))
	return idx, true, nil
}

func (s *MigrationService) migrateOne(ctx context.Context, st MigrationStores, index *models.Page, lc *models.LegacyCampaign, report *MigrationReport) error {
	if _, err := st.Campaigns.GetByLegacyID(ctx, lc.ID); err == nil {
		s.log.Info("campaign already migrated", zap.String("slug", lc.Slug))
		report.Skipped = append(report.Skipped, lc.Slug)
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	cp := legacyToCampaignPage(lc)

	var summary *htmltext.Summary
	if lc.ContentRendered != nil && *lc.ContentRendered != "" {
		cp.Body = append(cp.Body, models.NewTextBlock(models.BlockTypeHTML, *lc.ContentRendered))
		sum, err := htmltext.Summarize(*lc.ContentRendered, descriptionExcerptLen)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: could not parse content: %v", lc.Slug, err))
		} else {
			summary = sum
		}
	}
	if cp.Description == nil && summary != nil && summary.Excerpt != "" {
		excerpt := summary.Excerpt
		cp.Description = &excerpt
	}

	petitions, err := st.Legacy.Petitions(ctx, lc.ID)
	if err != nil {
		return err
	}
	for _, p := range petitions {
		cp.Body = append(cp.Body, models.NewPetitionBlock(p.ID, p.DisplayOnCampaignPage))
	}

	cover := ""
	if lc.CoverPath != nil {
		cover = *lc.CoverPath
	} else if summary != nil && summary.FirstImage() != nil {
		cover = summary.FirstImage().Src
	}
	if cover != "" {
		img, err := st.Images.GetOrCreateByTitle(ctx, cover, cover)
		if err != nil {
			s.log.Warn("could not migrate image", zap.String("slug", lc.Slug), zap.Error(err))
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: could not migrate image: %v", lc.Slug, err))
		} else {
			cp.CoverImageID = &img.ID
		}
	}

	if err := st.Campaigns.Create(ctx, index, cp); err != nil {
		return err
	}

	eventIDs, err := st.Legacy.EventIDs(ctx, lc.ID)
	if err != nil {
		return err
	}
	for i, id := range eventIDs {
		if err := st.Campaigns.AddEvent(ctx, cp.ID, id, i); err != nil {
			return err
		}
	}

	_, created, err := st.Redirects.GetOrCreate(ctx, "/campaigns/"+lc.Slug+"/", cp.ID)
	if err != nil {
		return err
	}
	if created {
		report.Redirects++
	}

	report.Migrated = append(report.Migrated, lc.Slug)
	s.log.Info("migrated campaign", zap.String("slug", lc.Slug), zap.Int("petitions", len(petitions)))
	return nil
}

func legacyToCampaignPage(lc *models.LegacyCampaign) *models.CampaignPage {
	cp := models.NewCampaignPage(lc.Title, lc.Slug)
	cp.Live = true
	legacyID := lc.ID
	cp.LegacyCampaignID = &legacyID
	cp.Status = lc.Status
	cp.Visible = lc.Visible
	cp.Description = lc.Description
	cp.CallToAction = lc.CallToAction
	cp.CallToActionHeader = lc.CallToActionHeader
	cp.DonationAction = lc.DonationAction
	cp.DonationProductID = lc.DonationProductID
	cp.DonationGoal = lc.DonationGoal
	cp.DonationGoalShowNumbers = lc.DonationGoalShowNumbers
	cp.SubscriptionAction = lc.SubscriptionAction
	cp.SocialShares = lc.SocialShares
	return cp
}
