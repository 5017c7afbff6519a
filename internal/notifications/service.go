package notifications

import (
	"context"
	"log/slog"
	"time"

	"confwatch/internal/config"
	"confwatch/internal/logging"
)

const userAgent = "confwatch/0.1.0"

// Channel delivers a rendered message to one destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Delivery is the outcome of sending a message through one channel.
type Delivery struct {
	Channel string
	Err     error
	Elapsed time.Duration
}

// Delivered reports whether the channel accepted the message.
func (d Delivery) Delivered() bool {
	return d.Err == nil
}

// Service fans a message out to every configured channel.
type Service struct {
	channels []Channel
	logger   *slog.Logger
}

// NewService builds the channel set from cfg. Channels with incomplete
// configuration are skipped; a service with no channels sends nothing.
func NewService(cfg *config.Config, logger *slog.Logger) *Service {
	logger = logging.NewComponentLogger(logger, "notifications")
	var channels []Channel

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if cfg.Notifications.PushPlusToken != "" {
		channels = append(channels, NewPushPlus(cfg.Notifications.PushPlusURL, cfg.Notifications.PushPlusToken, timeout))
	} else {
		logger.Info("pushplus channel skipped", logging.String("reason", "no pushplus token configured"))
	}

	if cfg.EmailConfigured() {
		channels = append(channels, NewEmail(EmailSettings{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPass,
			Receiver: cfg.Email.Receiver,
		}))
	} else {
		logger.Info("email channel skipped", logging.String("reason", "smtp configuration incomplete"))
	}

	if cfg.TelegramConfigured() {
		channels = append(channels, NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	} else {
		logger.Debug("telegram channel skipped", logging.String("reason", "no bot token or chat id"))
	}

	return &Service{channels: channels, logger: logger}
}

// NewServiceWithChannels builds a service over explicit channels.
func NewServiceWithChannels(logger *slog.Logger, channels ...Channel) *Service {
	return &Service{
		channels: channels,
		logger:   logging.NewComponentLogger(logger, "notifications"),
	}
}

// Channels returns the names of the active channels.
func (s *Service) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch sends msg through every channel. A failing channel is logged and
// does not stop the others.
func (s *Service) Dispatch(ctx context.Context, msg Message) []Delivery {
	if s == nil || len(s.channels) == 0 {
		return nil
	}
	logger := logging.WithContext(ctx, s.logger)
	deliveries := make([]Delivery, 0, len(s.channels))
	for _, ch := range s.channels {
		start := time.Now()
		err := ch.Send(ctx, msg)
		delivery := Delivery{Channel: ch.Name(), Err: err, Elapsed: time.Since(start)}
		deliveries = append(deliveries, delivery)
		if err != nil {
			logging.WarnWithContext(logger, "notification delivery failed", "notification_failed",
				logging.String(logging.FieldChannel, ch.Name()),
				logging.String("title", msg.Title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "subscribers on this channel miss the update"),
				logging.String(logging.FieldErrorHint, "check channel credentials and endpoint reachability"),
			)
			continue
		}
		logger.Info("notification sent",
			logging.String(logging.FieldChannel, ch.Name()),
			logging.String("title", msg.Title),
			logging.Duration("elapsed", delivery.Elapsed))
	}
	return deliveries
}
