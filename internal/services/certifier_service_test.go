// internal/services/certifier_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
)

type CertifierTestSuite struct {
	suite.Suite
	certifiers *CertifierService
}

func (suite *CertifierTestSuite) SetupTest() {
	suite.certifiers = NewCertifierService(newTestDB(suite.T()))
}

func (suite *CertifierTestSuite) TestBootstrapAddWithoutActor() {
	result, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)

	assert.True(suite.T(), result.Certifier.Active)
	assert.Nil(suite.T(), result.Certifier.AddedBy)
	assert.True(suite.T(), strings.HasPrefix(result.Secret, "ghc_"))
	assert.NotContains(suite.T(), result.Certifier.SecretHash, result.Secret)
}

func (suite *CertifierTestSuite) TestActorRequiredOnceCertifiersExist() {
	_, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)

	_, err = suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (suite *CertifierTestSuite) TestAddWithActingCertifier() {
	first, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)

	second, err := suite.certifiers.AddCertifier(&AddCertifierRequest{
		WalletAddress:     randomWallet(),
		ActingCertifierID: &first.Certifier.ID,
	})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), second.Certifier.AddedBy)
	assert.Equal(suite.T(), first.Certifier.ID, *second.Certifier.AddedBy)
}

func (suite *CertifierTestSuite) TestDuplicateWalletConflict() {
	wallet := randomWallet()
	first, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: wallet})
	require.NoError(suite.T(), err)

	_, err = suite.certifiers.AddCertifier(&AddCertifierRequest{
		WalletAddress:     wallet,
		ActingCertifierID: &first.Certifier.ID,
	})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindConflict))
}

func (suite *CertifierTestSuite) TestMalformedWalletRejected() {
	_, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: "not-a-wallet"})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: "0x1234"})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func (suite *CertifierTestSuite) TestRevokeIsIdempotent() {
	first, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)
	second, err := suite.certifiers.AddCertifier(&AddCertifierRequest{
		WalletAddress:     randomWallet(),
		ActingCertifierID: &first.Certifier.ID,
	})
	require.NoError(suite.T(), err)

	revoked, err := suite.certifiers.RevokeCertifier(second.Certifier.ID, first.Certifier.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), revoked.Active)
	require.NotNil(suite.T(), revoked.RevokedAt)
	firstRevocation := *revoked.RevokedAt

	// Second revocation is a no-op, not an error.
	revoked, err = suite.certifiers.RevokeCertifier(second.Certifier.ID, first.Certifier.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), revoked.Active)
	assert.Equal(suite.T(), firstRevocation.Unix(), revoked.RevokedAt.Unix())
}

func (suite *CertifierTestSuite) TestRevokedActorCannotAct() {
	first, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)
	second, err := suite.certifiers.AddCertifier(&AddCertifierRequest{
		WalletAddress:     randomWallet(),
		ActingCertifierID: &first.Certifier.ID,
	})
	require.NoError(suite.T(), err)

	_, err = suite.certifiers.RevokeCertifier(first.Certifier.ID, second.Certifier.ID)
	require.NoError(suite.T(), err)

	_, err = suite.certifiers.AddCertifier(&AddCertifierRequest{
		WalletAddress:     randomWallet(),
		ActingCertifierID: &first.Certifier.ID,
	})
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (suite *CertifierTestSuite) TestAuthorize() {
	result, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)

	certifier, err := suite.certifiers.Authorize(result.Certifier.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), result.Certifier.WalletAddress, certifier.WalletAddress)

	_, err = suite.certifiers.Authorize(uuid.New())
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (suite *CertifierTestSuite) TestAuthenticateByWallet() {
	result, err := suite.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(suite.T(), err)

	certifier, err := suite.certifiers.AuthenticateByWallet(result.Certifier.WalletAddress, result.Secret)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), result.Certifier.ID, certifier.ID)

	_, err = suite.certifiers.AuthenticateByWallet(result.Certifier.WalletAddress, "ghc_wrong")
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindUnauthorized))

	_, err = suite.certifiers.AuthenticateByWallet(randomWallet(), result.Secret)
	assert.True(suite.T(), apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestCertifierSuite(t *testing.T) {
	suite.Run(t, new(CertifierTestSuite))
}
