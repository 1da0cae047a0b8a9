// Package ui defines the opaque render values the orchestration core hands
// to the rendering layer. The core never inspects a node's contents; a
// renderer type-switches on the concrete node types it knows how to draw.
package ui

import "github.com/AIDentistry/nicolette-chatbot/pkg/models"

// Node is a renderable value. Implementations outside this package (such as
// live view streams) may also satisfy it; renderers resolve those to their
// current node before drawing.
type Node interface {
	NodeKind() string
}

// UserText renders a plain user utterance.
type UserText struct {
	Content string
}

func (UserText) NodeKind() string { return "user_text" }

// BotText renders assistant prose. For a live turn the content grows as
// deltas arrive.
type BotText struct {
	Content string
}

func (BotText) NodeKind() string { return "bot_text" }

// SystemNotice renders an out-of-band system notification, such as a
// completed trade.
type SystemNotice struct {
	Content string
}

func (SystemNotice) NodeKind() string { return "system_notice" }

// Spinner is the generic loading indicator shown before a turn's first
// renderable output exists.
type Spinner struct{}

func (Spinner) NodeKind() string { return "spinner" }

// Card wraps rich tool output in the assistant-card container.
type Card struct {
	Child Node
}

func (Card) NodeKind() string { return "card" }

// Skeleton is a tool-specific loading placeholder.
type Skeleton struct {
	// For matches the tool that will replace this placeholder.
	For string
}

func (Skeleton) NodeKind() string { return "skeleton" }

// StockView renders a single quoted instrument.
type StockView struct {
	Stock models.Stock
}

func (StockView) NodeKind() string { return "stock" }

// StocksView renders a list of trending instruments.
type StocksView struct {
	Stocks []models.Stock
}

func (StocksView) NodeKind() string { return "stocks" }

// PurchaseView renders a purchase ticket. While Status is
// PurchaseRequiresAction the renderer offers the confirmation action.
type PurchaseView struct {
	Purchase models.Purchase
}

func (PurchaseView) NodeKind() string { return "purchase" }

// EventsView renders a timeline of market events.
type EventsView struct {
	Events []models.Event
}

func (EventsView) NodeKind() string { return "events" }
