package notify

import (
	"context"
	"fmt"
	"log/slog"

	"atamagaii/internal/scheduler"

	telegram "github.com/go-telegram/bot"
)

// Notifier pushes a Telegram message to a card's owning user when the
// scheduler fires the leech hook, and logs the reset hook (§6 "Observer
// hooks", DOMAIN STACK wiring for github.com/go-telegram/bot). It is a
// concrete consumer of the
// hooks registry the design notes call for — not a plugin system, just a
// notification seam.
type Notifier struct {
	bot    *telegram.Bot
	logr   *slog.Logger
	chatID func(card *scheduler.Card) (int64, error)
}

// New builds a Notifier. chatID resolves which Telegram chat owns a given
// card's group, so a leech event can reach the right user.
func New(bot *telegram.Bot, logr *slog.Logger, chatID func(card *scheduler.Card) (int64, error)) *Notifier {
	return &Notifier{bot: bot, logr: logr, chatID: chatID}
}

// Register attaches this notifier to hooks, one handler per event.
func (n *Notifier) Register(hooks *scheduler.Hooks) {
	hooks.On(scheduler.EventLeech, n.onLeech)
	hooks.On(scheduler.EventReset, n.onReset)
}

func (n *Notifier) onLeech(args ...interface{}) {
	if len(args) == 0 {
		return
	}
	card, ok := args[0].(*scheduler.Card)
	if !ok {
		return
	}
	chatID, err := n.chatID(card)
	if err != nil {
		n.logr.Error("resolving chat for leech notification", slog.Any("error", err), slog.Int64("card_id", card.ID))
		return
	}
	n.send(chatID, fmt.Sprintf("A card has become a leech after %d lapses.", card.Lapses))
}

func (n *Notifier) onReset(args ...interface{}) {
	n.logr.Info("scheduler reset")
}

func (n *Notifier) send(chatID int64, text string) {
	_, err := n.bot.SendMessage(context.Background(), &telegram.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		n.logr.Error("sending telegram notification", slog.Any("error", err), slog.Int64("chat_id", chatID))
	}
}
