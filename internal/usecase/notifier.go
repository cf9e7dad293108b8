package usecase

import (
	"context"
	"log/slog"
)

// メールで送る内容。配送は別の仕組みに任せる
type Message struct {
	To       string
	Subject  string
	Template string
	Link     string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// リンクをログに出すだけのNotifier（開発・テスト用）
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.log.InfoContext(ctx, "mail queued",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"link", msg.Link,
	)
	return nil
}
