package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// PurchaseConfirmation holds the initial handles of a detached purchase
// confirmation: a progress item whose stream settles on the success node,
// and a notice item whose stream settles on the system-notice node. The
// caller is never blocked on the confirmation's completion.
type PurchaseConfirmation struct {
	Progress *UIItem
	Notice   *UIItem
}

// ConfirmPurchase is invoked by the rendering layer when the user acts on a
// previously rendered purchase ticket. It returns immediately with open
// progress handles and schedules an independent task that executes the
// trade, finalizes both streams, and reconciles durable state through the
// conversation's commit path.
func (e *Engine) ConfirmPurchase(ctx context.Context, symbol string, price float64, quantity float64) *PurchaseConfirmation {
	progress := NewUIStream(ui.BotText{
		Content: fmt.Sprintf("Purchasing %s $%s...", trimFloat(quantity), symbol),
	})
	notice := NewUIStream(nil)

	conf := &PurchaseConfirmation{
		Progress: &UIItem{ID: uuid.NewString(), Node: progress},
		Notice:   &UIItem{ID: uuid.NewString(), Node: notice},
	}

	go e.runPurchase(context.WithoutCancel(ctx), progress, notice, symbol, price, quantity)

	return conf
}

func (e *Engine) runPurchase(ctx context.Context, progress, notice *UIStream, symbol string, price, quantity float64) {
	e.sleep(ctx, e.confirmDelay)

	_ = progress.Update(ui.BotText{
		Content: fmt.Sprintf("Purchasing %s $%s... working on it...", trimFloat(quantity), symbol),
	})

	e.sleep(ctx, e.confirmDelay)

	total := price * quantity

	_ = progress.Done(ui.BotText{
		Content: fmt.Sprintf("You have successfully purchased %s $%s. Total cost: %s",
			trimFloat(quantity), symbol, formatUSD(total)),
	})
	_ = notice.Done(ui.SystemNotice{
		Content: fmt.Sprintf("You have purchased %s shares of %s at $%s. Total cost = %s.",
			trimFloat(quantity), symbol, trimFloat(price), formatUSD(total)),
	})

	completed, err := json.Marshal(models.Purchase{
		Symbol:         symbol,
		Price:          price,
		NumberOfShares: quantity,
		Status:         models.PurchaseCompleted,
	})
	if err != nil {
		e.logger.Error(ctx, "encode completed purchase", "error", err)
		e.metrics.ObserveConfirmation("error")
		return
	}

	err = e.state.Mutate(ctx, func(chat *models.Chat) {
		// Patch the most recent purchase ticket rather than a position
		// captured at launch: an ordinary turn may have appended to the
		// log while this task was sleeping.
		patched := false
		for i := len(chat.Messages) - 1; i >= 0; i-- {
			m := chat.Messages[i]
			if m.Role == models.RoleFunction && m.Name == ToolShowStockPurchase {
				chat.Messages[i].Content = string(completed)
				patched = true
				break
			}
		}
		if !patched {
			chat.Messages = append(chat.Messages, models.Message{
				ID:      uuid.NewString(),
				Role:    models.RoleFunction,
				Name:    ToolShowStockPurchase,
				Content: string(completed),
			})
		}
		chat.Messages = append(chat.Messages, models.Message{
			ID:   uuid.NewString(),
			Role: models.RoleSystem,
			Content: fmt.Sprintf("[User has purchased %s shares of %s at %s. Total cost = %s]",
				trimFloat(quantity), symbol, trimFloat(price), trimFloat(total)),
		})
	})
	if err != nil {
		e.logger.Error(ctx, "commit after purchase confirmation failed", "error", err)
		e.metrics.ObserveConfirmation("error")
		return
	}
	e.metrics.ObserveConfirmation("ok")
}

// trimFloat renders a float without trailing zeros: 1500.0 -> "1500".
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatUSD renders a dollar amount with thousands separators and cents:
// 1500 -> "$1,500.00".
func formatUSD(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}
