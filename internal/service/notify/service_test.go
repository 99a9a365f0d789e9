package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetflow/assetflow/internal/domain/models"
)

type recordingClient struct {
	to, body string
	err      error
}

func (c *recordingClient) SendText(_ context.Context, to, body string) (string, error) {
	c.to, c.body = to, body
	return "wamid.1", c.err
}

func TestImportFinished(t *testing.T) {
	c := &recordingClient{}
	n := NewWhatsAppNotifier(c, "919800000000", nil)

	report := &models.ImportReport{RowsSeen: 3, UniqueVendors: 2, VendorsCreated: 1, Warnings: []string{"Row 4: x"}}
	report.Assets.Created = 2
	report.Assets.Skipped = 1

	err := n.ImportFinished(context.Background(), &models.ImportBatch{ID: 7, OriginalFilename: "march.xlsx"}, report)
	require.NoError(t, err)
	assert.Equal(t, "919800000000", c.to)
	assert.Equal(t, "Import #7 (march.xlsx) finished\n"+
		"Rows: 3, vendors: 2 (1 new)\n"+
		"Assets: 2 created, 0 updated, 1 skipped, 0 errors\n"+
		"Movements: 0 created, 0 updated, 0 skipped, 0 errors\n"+
		"Costings: 0 created, 0 updated, 0 skipped, 0 errors\n"+
		"Warnings: 1", c.body)
}

func TestBatchDeletedWrapsError(t *testing.T) {
	c := &recordingClient{err: errors.New("timeout")}
	n := NewWhatsAppNotifier(c, "1", nil)

	err := n.BatchDeleted(context.Background(), 3, &models.DeletionSummary{Assets: 2, Vendors: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, c.body, "Import #3 deleted")
}
