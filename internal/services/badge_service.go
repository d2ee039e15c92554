package services

import (
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BadgeIssuer is the external credentialing system.
type BadgeIssuer interface {
	IssueBadge(ctx context.Context, badgeClassID, recipientEmail, narrative string) (string, error)
}

// BadgeService bridges an approval to the external issuer and records
// the resulting assertion. Issuance is idempotent per entry: the unique
// constraints on entry_id and external_id make a second attempt fail.
type BadgeService struct {
	issuer              BadgeIssuer
	assertionRepository *repository.AssertionRepository
	badgeClasses        map[string]string
}

func NewBadgeService(
	issuer BadgeIssuer,
	assertionRepository *repository.AssertionRepository,
	badgeClasses map[string]string,
) *BadgeService {
	return &BadgeService{
		issuer:              issuer,
		assertionRepository: assertionRepository,
		badgeClasses:        badgeClasses,
	}
}

// IssueForEntryInTx issues the badge and persists the assertion inside
// the caller's transaction, so a failed issuance rolls back together
// with the approval that triggered it.
func (s *BadgeService) IssueForEntryInTx(
	ctx context.Context,
	tx *gorm.DB,
	entry *models.AssessmentTrackerEntry,
	trainee *models.User,
	assessment *models.Assessment,
) (*models.Assertion, error) {
	badgeClassID, ok := s.badgeClasses[assessment.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownBadgeClass, assessment.Name)
	}

	narrative := fmt.Sprintf("Completed the %q skill assessment.", assessment.Name)
	externalID, err := s.issuer.IssueBadge(ctx, badgeClassID, trainee.Email, narrative)
	if err != nil {
		return nil, err
	}

	assertion := &models.Assertion{
		AssertionID: uuid.New(),
		EntryID:     entry.EntryID,
		ExternalID:  externalID,
		BadgeName:   assessment.Name,
	}

	if err := s.assertionRepository.CreateInTx(tx, assertion); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, models.ErrAssertionExists
		}
		return nil, err
	}

	return assertion, nil
}
