package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
	client "github.com/assetflow/assetflow/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Notifier tells operators about finished imports and deletions.
type Notifier interface {
	ImportFinished(ctx context.Context, batch *models.ImportBatch, report *models.ImportReport) error
	BatchDeleted(ctx context.Context, batchID uint64, summary *models.DeletionSummary) error
}

// WhatsAppNotifier pushes summaries to one WhatsApp recipient.
type WhatsAppNotifier struct {
	client client.Client
	to     string
	logger *zap.Logger
}

func NewWhatsAppNotifier(c client.Client, to string, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppNotifier{client: c, to: to, logger: logger}
}

func (n *WhatsAppNotifier) ImportFinished(ctx context.Context, batch *models.ImportBatch, report *models.ImportReport) error {
	return n.send(ctx, ImportSummary(batch, report))
}

func (n *WhatsAppNotifier) BatchDeleted(ctx context.Context, batchID uint64, summary *models.DeletionSummary) error {
	return n.send(ctx, fmt.Sprintf("Import #%d deleted: %d costings, %d movements, %d assets, %d vendors removed; %d vendors kept.",
		batchID, summary.Costings, summary.Movements, summary.Assets, summary.Vendors, summary.VendorsDetached))
}

func (n *WhatsAppNotifier) send(ctx context.Context, body string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := n.client.SendText(ctx, n.to, body)
	if err != nil {
		return fmt.Errorf("notify %s: %w", n.to, err)
	}
	n.logger.Debug("notification sent", zap.String("message_id", id))
	return nil
}

// ImportSummary renders a short multi-line digest of a finished import.
func ImportSummary(batch *models.ImportBatch, report *models.ImportReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import #%d (%s) finished\n", batch.ID, batch.OriginalFilename)
	fmt.Fprintf(&b, "Rows: %d, vendors: %d (%d new)\n", report.RowsSeen, report.UniqueVendors, report.VendorsCreated)
	writeStage(&b, "Assets", report.Assets)
	writeStage(&b, "Movements", report.Movements)
	writeStage(&b, "Costings", report.Costings)
	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %d", len(report.Warnings))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeStage(b *strings.Builder, name string, s models.StageResult) {
	fmt.Fprintf(b, "%s: %d created, %d updated, %d skipped, %d errors\n", name, s.Created, s.Updated, s.Skipped, s.Errors)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ImportFinished(context.Context, *models.ImportBatch, *models.ImportReport) error {
	return nil
}

func (Nop) BatchDeleted(context.Context, uint64, *models.DeletionSummary) error { return nil }
