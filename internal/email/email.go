package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/autorental/internal/kafka"
)

// Sender is the delivery end of the notification pipeline. Real delivery is
// someone else's problem; this one writes to stdout.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	fmt.Printf("send email to %s subject=%q body=%q\n", event.To, event.Subject, event.Body)
	return nil
}
