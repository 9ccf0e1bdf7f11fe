package notifyservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/automaatte/platform/internal/blogservice"
	"github.com/automaatte/platform/internal/common"
)

func NewNotifyService(mb common.MessageConsumer, host, username, password, sender, supportInbox string, port int, logger *slog.Logger) *NotifyService {
	ctx, cancel := context.WithCancel(context.Background())
	return &NotifyService{
		mb:           mb,
		m:            NewMailer(host, port, username, password, sender, NewTemplate()),
		supportInbox: supportInbox,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SendContactNotifications forwards contact-form submissions to the
// support inbox.
func (s *NotifyService) SendContactNotifications() {
	msgs, err := s.mb.Consume(common.ContactMessageKey, common.NotifyExchange, common.ContactMessageQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go s.consume(msgs, func(body []byte) (string, any, string, error) {
		var data ContactMessage
		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}

		return s.supportInbox, data, "contact_message.html", nil
	})
}

// SendReplyNotifications mails the author of a comment when it gains a
// direct reply.
func (s *NotifyService) SendReplyNotifications() {
	msgs, err := s.mb.Consume(common.CommentReplyKey, common.NotifyExchange, common.CommentReplyQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go s.consume(msgs, func(body []byte) (string, any, string, error) {
		var data blogservice.ReplyNotification
		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}

		return data.Email, data, "comment_reply.html", nil
	})
}

// consume drains a delivery channel, turning each message into a mail via
// decode and sending it with exponential backoff plus jitter.
func (s *NotifyService) consume(msgs <-chan amqp.Delivery, decode func(body []byte) (recipient string, payload any, templateFile string, err error)) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			recipient, payload, templateFile, err := decode(msg.Body)
			if err != nil {
				s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
				msg.Ack(false)
				continue
			}

			const maxRetries = 5
			const baseDelay = 500 * time.Millisecond

			var attempt int
			for attempt = 0; attempt < maxRetries; attempt++ {
				err = s.m.send(recipient, payload, templateFile)
				if err == nil {
					s.logger.Info("notification email sent", slog.String("email", recipient), slog.String("template", templateFile))
					msg.Ack(false)
					break
				}

				delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
				s.logger.Info("delaying notification email", slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))
				time.Sleep(delay)
			}

			if attempt == maxRetries {
				s.logger.Error("could not send notification email", slog.String("email", recipient))
				msg.Ack(false)
			}

		case <-s.ctx.Done():
			s.logger.Info("stopping notification consumer due to context cancellation")
			return
		}
	}
}

func (s *NotifyService) Close() {
	s.cancel()
}
