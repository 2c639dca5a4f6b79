package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/internal/versioning"
	"stepwise/pkg/utils"
)

type VersionServiceInterface interface {
	ListVersions(ctx context.Context, walkthroughID, actorID uuid.UUID) ([]response_models.VersionSummary, error)
	GetVersion(ctx context.Context, walkthroughID, actorID uuid.UUID, version int) (*response_models.VersionResponse, error)
	Rollback(ctx context.Context, walkthroughID, actorID uuid.UUID, version int) (*response_models.WalkthroughResponse, error)
	// RecoverBlocks restores lost media blocks from a snapshot. A nil version picks the newest
	// snapshot holding an image with a URL.
	RecoverBlocks(ctx context.Context, walkthroughID, actorID uuid.UUID, version *int) (*response_models.RecoveryResponse, error)
}

type VersionService struct {
	walkthroughs repositories.WalkthroughRepository
	versions     repositories.VersionRepository
	guard        memberGuard
	log          *zap.Logger
}

func NewVersionService(
	walkthroughs repositories.WalkthroughRepository,
	versions repositories.VersionRepository,
	workspaces repositories.WorkspaceRepository,
	log *zap.Logger,
) VersionServiceInterface {
	return &VersionService{
		walkthroughs: walkthroughs,
		versions:     versions,
		guard:        memberGuard{workspaces: workspaces},
		log:          log.Named("version"),
	}
}

func (s *VersionService) load(ctx context.Context, id, actorID uuid.UUID, min db_models.MemberRole) (*db_models.Walkthrough, error) {
	w, err := s.walkthroughs.FindById(ctx, id)
	if err != nil {
		return nil, dbErr("find walkthrough", err)
	}
	if w == nil {
		return nil, utils.ErrWalkthroughNotFound
	}
	if _, err := s.guard.authorize(ctx, w.WorkspaceID, actorID, min); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *VersionService) snapshot(ctx context.Context, walkthroughID uuid.UUID, version int) (versioning.Snapshot, error) {
	rec, err := s.versions.FindByVersion(ctx, walkthroughID, version)
	if err != nil {
		return versioning.Snapshot{}, dbErr("find version", err)
	}
	if rec == nil {
		return versioning.Snapshot{}, utils.ErrVersionNotFound
	}
	return versioning.FromRecord(rec), nil
}

func (s *VersionService) ListVersions(ctx context.Context, walkthroughID, actorID uuid.UUID) ([]response_models.VersionSummary, error) {
	if _, err := s.load(ctx, walkthroughID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	recs, err := s.versions.ListByWalkthrough(ctx, walkthroughID)
	if err != nil {
		return nil, dbErr("list versions", err)
	}
	out := make([]response_models.VersionSummary, 0, len(recs))
	for i := range recs {
		out = append(out, response_models.NewVersionSummary(versioning.FromRecord(&recs[i])))
	}
	return out, nil
}

func (s *VersionService) GetVersion(ctx context.Context, walkthroughID, actorID uuid.UUID, version int) (*response_models.VersionResponse, error) {
	if _, err := s.load(ctx, walkthroughID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, walkthroughID, version)
	if err != nil {
		return nil, err
	}
	resp := response_models.NewVersionResponse(snap)
	return &resp, nil
}

// Rollback restores the content of a published version. It neither snapshots nor changes the
// version counter.
func (s *VersionService) Rollback(ctx context.Context, walkthroughID, actorID uuid.UUID, version int) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, walkthroughID, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, walkthroughID, version)
	if err != nil {
		return nil, err
	}

	versioning.Restore(w, snap, actorID)
	if err := s.walkthroughs.Update(ctx, w); err != nil {
		return nil, dbErr("rollback walkthrough", err)
	}
	s.log.Info("walkthrough rolled back",
		zap.String("walkthrough_id", w.ID.String()),
		zap.Int("restored_version", version),
		zap.Int("version", w.Version))
	return respond(w), nil
}

func (s *VersionService) RecoverBlocks(ctx context.Context, walkthroughID, actorID uuid.UUID, version *int) (*response_models.RecoveryResponse, error) {
	w, err := s.load(ctx, walkthroughID, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}

	var snap versioning.Snapshot
	if version != nil {
		snap, err = s.snapshot(ctx, walkthroughID, *version)
		if err != nil {
			return nil, err
		}
		if !snap.HasImageURLs() {
			return nil, utils.ErrNoRecoverableSnapshot
		}
	} else {
		rec, err := s.versions.LatestWithImageURLs(ctx, walkthroughID)
		if err != nil {
			return nil, dbErr("find recoverable version", err)
		}
		if rec == nil {
			return nil, utils.ErrNoRecoverableSnapshot
		}
		snap = versioning.FromRecord(rec)
	}

	steps, report := versioning.RecoverMedia(w.StepList(), snap.Steps())
	report.Version = snap.Version()
	if report.RecoveredBlocks > 0 {
		w.SetSteps(steps)
		w.UpdatedBy = actorID
		if err := s.walkthroughs.Update(ctx, w); err != nil {
			return nil, dbErr("recover blocks", err)
		}
	}
	s.log.Info("media recovery",
		zap.String("walkthrough_id", w.ID.String()),
		zap.Int("source_version", report.Version),
		zap.Int("recovered_blocks", report.RecoveredBlocks),
		zap.Int("steps_touched", report.StepsTouched))

	return &response_models.RecoveryResponse{Report: report, Walkthrough: *respond(w)}, nil
}
