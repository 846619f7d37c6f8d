package service

import (
	"context"

	"go.uber.org/zap"

	"tweetledger/internal/model"
	"tweetledger/internal/queue"
)

// publish sends a ledger event after the mutation committed. Failures are
// logged and never reach the caller. A nil publisher disables events.
func publish(ctx context.Context, publisher queue.Publisher, logger *zap.Logger, event queue.LedgerEvent) {
	if publisher == nil {
		return
	}
	msgID, err := publisher.Publish(ctx, queue.StreamLedger, event)
	if err != nil {
		logger.Warn("publish event failed",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return
	}
	logger.Debug("event published", zap.String("type", event.Type), zap.String("msg_id", msgID))
}

func validatePage(offset, limit int) error {
	if offset < 0 || limit < 0 {
		return model.ErrInvalidPagination
	}
	return nil
}
