package document

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	hubID := uuid.New()
	d, err := NewDocument(&hubID, nil, DocTypeValuation, "bpo-report.pdf", "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, DocStatusPendingUpload, d.Status)
	assert.False(t, d.IsAvailable())
	assert.True(t, d.IsPDF())
	assert.True(t, strings.HasPrefix(d.StorageKey, "asset/"+hubID.String()+"/valuation/"))
	assert.True(t, strings.HasSuffix(d.StorageKey, ".pdf"))
}

func TestNewDocument_AnchorExclusive(t *testing.T) {
	hubID := uuid.New()
	tradeID := uuid.New()

	// Neither anchor
	_, err := NewDocument(nil, nil, DocTypeOther, "f.pdf", "application/pdf")
	assert.Error(t, err)

	// Both anchors
	_, err = NewDocument(&hubID, &tradeID, DocTypeOther, "f.pdf", "application/pdf")
	assert.Error(t, err)

	// Trade-anchored tape file
	d, err := NewDocument(nil, &tradeID, DocTypeTape, "tape.csv", "text/csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.StorageKey, "trade/"+tradeID.String()+"/tape/"))
}

func TestNewDocument_ContentTypeAllowlist(t *testing.T) {
	hubID := uuid.New()
	_, err := NewDocument(&hubID, nil, DocTypeOther, "evil.exe", "application/octet-stream")
	assert.Error(t, err)

	_, err = NewDocument(&hubID, nil, DocTypeOther, "photo.jpg", "image/jpeg")
	assert.NoError(t, err)
}

func TestDocument_ConfirmUpload(t *testing.T) {
	hubID := uuid.New()
	userID := uuid.New()
	d, err := NewDocument(&hubID, nil, DocTypeValuation, "appraisal.pdf", "application/pdf")
	require.NoError(t, err)

	// Zero size rejected
	assert.Error(t, d.ConfirmUpload(0, 12, &userID))

	require.NoError(t, d.ConfirmUpload(204800, 12, &userID))
	assert.True(t, d.IsAvailable())
	assert.Equal(t, int64(204800), d.SizeBytes)
	assert.Equal(t, 12, d.PageCount)
	require.NotNil(t, d.ConfirmedAt)

	// Confirming twice fails
	assert.Error(t, d.ConfirmUpload(204800, 12, &userID))
}

func TestDocument_MarkDeleted(t *testing.T) {
	hubID := uuid.New()
	d, err := NewDocument(&hubID, nil, DocTypeOther, "misc.png", "image/png")
	require.NoError(t, err)

	require.NoError(t, d.MarkDeleted())
	assert.Error(t, d.MarkDeleted())
}
