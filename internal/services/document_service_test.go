// internal/services/document_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type DocumentTestSuite struct {
	suite.Suite
	w        *workflow
	producer *models.Producer
}

func (suite *DocumentTestSuite) SetupTest() {
	suite.w = newWorkflow(suite.T())
	suite.producer = suite.w.createProducer(suite.T())
}

func (suite *DocumentTestSuite) pageOne() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 50}
}

func (suite *DocumentTestSuite) TestSubmitDefaults() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	assert.Equal(suite.T(), models.DocumentStatusPending, document.Status)
	assert.Equal(suite.T(), 1, document.Version)
	assert.Nil(suite.T(), document.RiskScore)
	assert.Nil(suite.T(), document.ReviewedBy)
	assert.False(suite.T(), document.SubmittedAt.IsZero())
}

func (suite *DocumentTestSuite) TestSubmitUnknownProducer() {
	_, err := suite.w.documents.Submit(&SubmitDocumentRequest{
		ProducerID:   uuid.New(),
		DocumentType: "production_report",
	})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func (suite *DocumentTestSuite) TestSubmitValidation() {
	_, err := suite.w.documents.Submit(&SubmitDocumentRequest{ProducerID: suite.producer.ID})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = suite.w.documents.Submit(&SubmitDocumentRequest{
		ProducerID:   suite.producer.ID,
		DocumentType: "production_report",
		RiskScore:    f64(1.5),
	})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func (suite *DocumentTestSuite) TestSetRiskScoreBounds() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	_, err := suite.w.documents.SetRiskScore(document.ID, -0.1)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))

	updated, err := suite.w.documents.SetRiskScore(document.ID, 0.42)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), updated.RiskScore)
	assert.Equal(suite.T(), 0.42, *updated.RiskScore)
}

func (suite *DocumentTestSuite) TestSetRiskScoreOnTerminalDocument() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, f64(0.3))
	require.NoError(suite.T(), suite.w.db.Model(&models.Document{}).
		Where("id = ?", document.ID).
		Update("status", models.DocumentStatusRejected).Error)

	_, err := suite.w.documents.SetRiskScore(document.ID, 0.2)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindConflict))

	// The guarded update must leave the stored score untouched.
	reloaded, err := suite.w.documents.Get(document.ID)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), reloaded.RiskScore)
	assert.Equal(suite.T(), 0.3, *reloaded.RiskScore)
}

func (suite *DocumentTestSuite) TestSetRiskScoreUnknownDocument() {
	_, err := suite.w.documents.SetRiskScore(uuid.New(), 0.4)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *DocumentTestSuite) TestGetUnknownDocument() {
	_, err := suite.w.documents.Get(uuid.New())
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindNotFound))
}

/// Certifiers triage the queue riskiest-first: unscored and high-risk before
// low-risk, oldest first within a tier.
func (suite *DocumentTestSuite) TestListTriageOrdering() {
	base := time.Now().Add(-time.Hour)

	low := suite.w.submitDocument(suite.T(), suite.producer.ID, f64(0.2))
	high := suite.w.submitDocument(suite.T(), suite.producer.ID, f64(0.9))
	unscored := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	// The low-risk document is the oldest; it must still sort after both
	// detail-review documents.
	for i, id := range []uuid.UUID{low.ID, high.ID, unscored.ID} {
		require.NoError(suite.T(), suite.w.db.Model(&models.Document{}).
			Where("id = ?", id).
			Update("submitted_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	result, err := suite.w.documents.List(DocumentFilter{PaginationParams: suite.pageOne()})
	require.NoError(suite.T(), err)

	documents := result.Data.([]models.Document)
	require.Len(suite.T(), documents, 3)
	assert.Equal(suite.T(), high.ID, documents[0].ID)
	assert.Equal(suite.T(), unscored.ID, documents[1].ID)
	assert.Equal(suite.T(), low.ID, documents[2].ID)
}

func (suite *DocumentTestSuite) TestListFilters() {
	other := suite.w.createProducer(suite.T())
	mine := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)
	suite.w.submitDocument(suite.T(), other.ID, nil)

	pending := models.DocumentStatusPending
	result, err := suite.w.documents.List(DocumentFilter{
		PaginationParams: suite.pageOne(),
		Status:           &pending,
		ProducerID:       &suite.producer.ID,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), result.Total)

	documents := result.Data.([]models.Document)
	require.Len(suite.T(), documents, 1)
	assert.Equal(suite.T(), mine.ID, documents[0].ID)

	approved := models.DocumentStatusApproved
	result, err = suite.w.documents.List(DocumentFilter{
		PaginationParams: suite.pageOne(),
		Status:           &approved,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), result.Total)
}

func (suite *DocumentTestSuite) TestStats() {
	suite.w.submitDocument(suite.T(), suite.producer.ID, f64(0.2))
	suite.w.submitDocument(suite.T(), suite.producer.ID, f64(0.7))
	suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	stats, err := suite.w.documents.Stats()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), stats.Pending)
	assert.Equal(suite.T(), int64(1), stats.LowRisk)
	assert.Equal(suite.T(), int64(1), stats.HighRisk)
	assert.Equal(suite.T(), int64(1), stats.Unscored)
	assert.Equal(suite.T(), int64(0), stats.Approved)
	assert.Equal(suite.T(), int64(0), stats.Rejected)
}

func (suite *DocumentTestSuite) TestTransitionBumpsVersionAndStampsReviewer() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)
	certifierID := uuid.New()

	updated, err := suite.w.documents.transition(suite.w.db, document.ID, models.DocumentStatusApproved, certifierID, document.Version)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.DocumentStatusApproved, updated.Status)
	assert.Equal(suite.T(), 2, updated.Version)
	require.NotNil(suite.T(), updated.ReviewedBy)
	assert.Equal(suite.T(), certifierID, *updated.ReviewedBy)
	require.NotNil(suite.T(), updated.ReviewedAt)
}

func (suite *DocumentTestSuite) TestTransitionStaleVersionConflict() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	_, err := suite.w.documents.transition(suite.w.db, document.ID, models.DocumentStatusApproved, uuid.New(), document.Version+1)
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindConflict))
	assert.True(suite.T(), apperrors.Retryable(err))

	var appErr *apperrors.Error
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), document.Version+1, appErr.Details["expected_version"])
	assert.Equal(suite.T(), document.Version, appErr.Details["actual_version"])

	// The failed transition must not have touched the row.
	current, err := suite.w.documents.Get(document.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.DocumentStatusPending, current.Status)
	assert.Equal(suite.T(), document.Version, current.Version)
}

func (suite *DocumentTestSuite) TestTransitionFromTerminalConflict() {
	document := suite.w.submitDocument(suite.T(), suite.producer.ID, nil)

	updated, err := suite.w.documents.transition(suite.w.db, document.ID, models.DocumentStatusRejected, uuid.New(), document.Version)
	require.NoError(suite.T(), err)

	_, err = suite.w.documents.transition(suite.w.db, document.ID, models.DocumentStatusApproved, uuid.New(), updated.Version)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindConflict))
}

func (suite *DocumentTestSuite) TestTransitionUnknownDocument() {
	_, err := suite.w.documents.transition(suite.w.db, uuid.New(), models.DocumentStatusApproved, uuid.New(), 1)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDocumentSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
