package service

import (
	"errors"

	"zilconnect/internal/domain"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrOpportunityClosed   = errors.New("opportunity is not open for applications")
	ErrSelfApplication     = errors.New("you cannot apply to your own opportunity")
	ErrAlreadyApplied      = errors.New("you have already applied to this opportunity")
	ErrNotOpportunityOwner = errors.New("only the opportunity owner can do this")
)

// OpportunityService enforces the apply-time invariants; plain CRUD stays in
// the handler/repository pair.
type OpportunityService struct {
	oppRepo  *repository.OpportunityRepository
	notifSvc *NotificationService
	log      *zap.Logger
}

func NewOpportunityService(oppRepo *repository.OpportunityRepository, notifSvc *NotificationService, log *zap.Logger) *OpportunityService {
	return &OpportunityService{oppRepo: oppRepo, notifSvc: notifSvc, log: log}
}

// Apply creates one application per (opportunity, applicant). The opportunity
// must be open and self-application is forbidden; the composite unique index
// backs the duplicate pre-check.
func (s *OpportunityService) Apply(callerID, opportunityID uint, notes string) (*models.Application, error) {
	opp, err := s.oppRepo.GetByID(opportunityID)
	if err != nil {
		return nil, ErrOpportunityNotFound
	}
	if opp.Status != domain.OpportunityStatusOpen {
		return nil, ErrOpportunityClosed
	}
	if opp.CreatedByID == callerID {
		return nil, ErrSelfApplication
	}
	if _, err := s.oppRepo.GetApplicationByOpportunityAndUser(opportunityID, callerID); err == nil {
		return nil, ErrAlreadyApplied
	}

	app := &models.Application{
		OpportunityID: opportunityID,
		ApplicantID:   callerID,
		Status:        domain.ApplicationStatusPending,
		Notes:         notes,
	}
	if err := s.oppRepo.CreateApplication(app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	if err := s.oppRepo.IncrementApplicationCount(opportunityID); err != nil {
		s.log.Warn("application counter increment failed",
			zap.Uint("opportunity", opportunityID), zap.Error(err))
	}
	_ = s.notifSvc.Notify(opp.CreatedByID, domain.NotificationSystem,
		"New application for "+opp.Title, opportunityID)
	return app, nil
}

// UpdateApplicationStatus lets the opportunity owner move an application
// through Pending/Reviewed/Accepted/Rejected.
func (s *OpportunityService) UpdateApplicationStatus(callerID, applicationID uint, status string) (*models.Application, error) {
	app, err := s.oppRepo.GetApplication(applicationID)
	if err != nil {
		return nil, ErrOpportunityNotFound
	}
	if app.Opportunity.CreatedByID != callerID {
		return nil, ErrNotOpportunityOwner
	}
	app.Status = status
	if err := s.oppRepo.UpdateApplication(app); err != nil {
		return nil, err
	}
	_ = s.notifSvc.Notify(app.ApplicantID, domain.NotificationSystem,
		"Your application was marked "+status, app.OpportunityID)
	return app, nil
}
