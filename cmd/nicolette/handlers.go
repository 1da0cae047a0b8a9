// handlers.go contains the command implementations: the interactive REPL
// and the saved-chat listing.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AIDentistry/nicolette-chatbot/internal/auth"
	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/internal/config"
	"github.com/AIDentistry/nicolette-chatbot/internal/observability"
	"github.com/AIDentistry/nicolette-chatbot/internal/providers"
	"github.com/AIDentistry/nicolette-chatbot/internal/storage"
	"github.com/AIDentistry/nicolette-chatbot/internal/tools"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildStore(cfg *config.Config) (storage.ChatStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewSQLiteStore(cfg.Storage.Path)
	}
}

func buildProvider(cfg *config.Config) chat.CompletionProvider {
	if cfg.Provider.Name == "openai" {
		return providers.NewOpenAIProvider(cfg.Provider.APIKey)
	}
	return providers.NewDemoProvider()
}

// runChat drives the interactive REPL: each input line is one turn, and
// each returned view item is rendered once its stream settles.
func runChat(ctx context.Context, configPath, user, chatID string, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Logging.Level = "debug"
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("open chat store: %w", err)
	}

	if user != "" {
		ctx = auth.WithSession(ctx, &auth.Session{UserID: user, Name: user})
	}

	state, err := resumeOrCreateState(ctx, store, chatID, user, logger, metrics)
	if err != nil {
		return err
	}

	registry := chat.NewRegistry()
	if err := tools.RegisterAll(registry, cfg.Chat.SimulatedLatency); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	engine := chat.NewEngine(buildProvider(cfg), registry, state, chat.Options{
		Model:        cfg.Provider.Model,
		System:       chat.SystemPrompt,
		ConfirmDelay: cfg.Chat.SimulatedLatency,
		Logger:       logger,
		Metrics:      metrics,
	})

	items, err := engine.Rehydrate(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		renderItem(ctx, &item)
	}

	fmt.Printf("nicolette %s — chat %s", version, state.ChatID())
	if user == "" {
		fmt.Print(" (anonymous, history not saved)")
	}
	fmt.Println("\nType a message, /confirm to complete a purchase, /quit to exit.")

	var lastPurchase *models.Purchase

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/confirm":
			if lastPurchase == nil {
				fmt.Println("No pending purchase to confirm.")
				continue
			}
			conf := engine.ConfirmPurchase(ctx, lastPurchase.Symbol, lastPurchase.Price, lastPurchase.NumberOfShares)
			renderItem(ctx, conf.Progress)
			renderItem(ctx, conf.Notice)
			lastPurchase = nil
			continue
		}

		item, err := engine.SubmitUserMessage(ctx, line)
		if err != nil {
			logger.Error(ctx, "turn failed", "error", err)
			fmt.Println("Something went wrong. Please try again.")
			continue
		}
		if purchase := renderItem(ctx, item); purchase != nil {
			lastPurchase = purchase
			fmt.Println("Type /confirm to complete the purchase.")
		}
	}
	return scanner.Err()
}

// resumeOrCreateState loads a saved chat when --chat is given, otherwise
// starts a fresh conversation.
func resumeOrCreateState(ctx context.Context, store storage.ChatStore, chatID, user string, logger *observability.Logger, metrics *observability.Metrics) (*chat.State, error) {
	if chatID == "" {
		return chat.NewState(store, logger, metrics), nil
	}
	if user == "" {
		return nil, fmt.Errorf("--chat requires --user")
	}
	saved, err := store.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat %s: %w", chatID, err)
	}
	if saved.UserID != user {
		return nil, fmt.Errorf("chat %s does not belong to %s", chatID, user)
	}
	return chat.NewStateFrom(*saved, store, logger, metrics), nil
}

// runChats lists a user's saved conversations.
func runChats(ctx context.Context, configPath, user string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("open chat store: %w", err)
	}
	chats, err := store.List(ctx, user)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No saved chats.")
		return nil
	}
	for _, c := range chats {
		fmt.Printf("%s  %s  %q (%d messages)\n",
			c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Title, len(c.Messages))
	}
	return nil
}

// renderItem draws one view item to stdout, waiting for a live stream to
// settle first. It returns the purchase when the final node is an
// actionable purchase ticket, so the REPL can offer /confirm.
func renderItem(ctx context.Context, item *chat.UIItem) *models.Purchase {
	return renderNode(ctx, item.Node)
}

func renderNode(ctx context.Context, node ui.Node) *models.Purchase {
	switch n := node.(type) {
	case *chat.UIStream:
		if !n.Closed() {
			fmt.Println("...")
			select {
			case <-n.Wait():
			case <-ctx.Done():
				return nil
			}
		}
		return renderNode(ctx, n.Value())
	case ui.UserText:
		fmt.Println("you:", n.Content)
	case ui.BotText:
		if n.Content != "" {
			fmt.Println(n.Content)
		}
	case ui.SystemNotice:
		fmt.Println("*", n.Content)
	case ui.Card:
		return renderNode(ctx, n.Child)
	case ui.StockView:
		printStock(n.Stock)
	case ui.StocksView:
		for _, s := range n.Stocks {
			printStock(s)
		}
	case ui.PurchaseView:
		fmt.Printf("[ %s  $%.2f x %g = $%.2f ]\n",
			n.Purchase.Symbol, n.Purchase.Price, n.Purchase.NumberOfShares, n.Purchase.Total())
		if n.Purchase.Status == models.PurchaseRequiresAction {
			p := n.Purchase
			return &p
		}
		fmt.Println("Purchase completed.")
	case ui.EventsView:
		for _, e := range n.Events {
			fmt.Printf("%s  %s\n    %s\n", e.Date, e.Headline, e.Description)
		}
	case ui.Spinner, ui.Skeleton:
		fmt.Println("...")
	default:
		// Unknown nodes degrade to their JSON form.
		raw, _ := json.Marshal(n)
		fmt.Println(string(raw))
	}
	return nil
}

func printStock(s models.Stock) {
	arrow := "▲"
	if s.Delta < 0 {
		arrow = "▼"
	}
	fmt.Printf("%-6s $%.2f  %s %.2f\n", s.Symbol, s.Price, arrow, s.Delta)
}
