package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/givebridge/givebridge/internal/config"
	"github.com/givebridge/givebridge/internal/observability/metrics"
)

const (
	KindReceipt    = "receipt"
	KindFailure    = "failure"
	KindAdminAlert = "admin_alert"
)

// Message is one outbound notification.
type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// Provider delivers messages over some channel, usually email.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// Receipt describes a settled donation for donor-facing mail.
type Receipt struct {
	DonationID   string
	DonorEmail   string
	DonorName    string
	CampaignName string
	Amount       float64
	Currency     string
	SettledAt    time.Time
}

// Failure describes a declined payment for donor-facing mail.
type Failure struct {
	DonorEmail string
	DonorName  string
	Reason     string
}

// Notifier fans messages out to the provider from a background
// worker. Enqueue never blocks the caller: when the queue is full the
// message is dropped and counted, the donation itself is already
// committed.
type Notifier struct {
	provider Provider
	log      *zap.Logger
	settings *config.SettingsHolder
	metrics  *metrics.Metrics

	queue    chan Message
	done     chan struct{}
	wg       sync.WaitGroup
	sendWait time.Duration
}

type Option func(*Notifier)

func WithQueueSize(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan Message, size)
		}
	}
}

func WithSendTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.sendWait = d
		}
	}
}

func New(provider Provider, log *zap.Logger, settings *config.SettingsHolder, obsMetrics *metrics.Metrics, opts ...Option) *Notifier {
	n := &Notifier{
		provider: provider,
		log:      log.Named("notifier"),
		settings: settings,
		metrics:  obsMetrics,
		queue:    make(chan Message, 256),
		done:     make(chan struct{}),
		sendWait: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start launches the delivery worker.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.run()
}

// Stop drains the queue and waits for in-flight sends.
func (n *Notifier) Stop() {
	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case msg := <-n.queue:
			n.deliver(msg)
		case <-n.done:
			for {
				select {
				case msg := <-n.queue:
					n.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.sendWait)
	defer cancel()

	operation := func() (struct{}, error) {
		return struct{}{}, n.provider.Send(ctx, msg)
	}
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		n.log.Warn("notification delivery failed",
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		n.record(ctx, msg.Kind, "error")
		return
	}
	n.record(ctx, msg.Kind, "sent")
}

func (n *Notifier) record(ctx context.Context, kind, result string) {
	if n.metrics != nil {
		n.metrics.RecordNotifierSend(ctx, kind, result)
	}
}

func (n *Notifier) enqueue(msg Message) {
	if n.settings != nil && !n.settings.Get().NotificationsEnabled {
		return
	}
	if strings.TrimSpace(msg.To) == "" {
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.log.Warn("notification queue full, dropping message",
			zap.String("kind", msg.Kind),
		)
		n.record(context.Background(), msg.Kind, "dropped")
	}
}

// SendReceipt queues a thank-you receipt for a settled donation.
func (n *Notifier) SendReceipt(r Receipt) {
	name := strings.TrimSpace(r.DonorName)
	if name == "" {
		name = "Friend"
	}
	n.enqueue(Message{
		Kind:    KindReceipt,
		To:      r.DonorEmail,
		Subject: fmt.Sprintf("Thank you for supporting %s", r.CampaignName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nWe received your gift of %.2f %s to %s on %s.\nYour donation reference is %s.\n\nThank you!",
			name,
			r.Amount,
			strings.ToUpper(r.Currency),
			r.CampaignName,
			r.SettledAt.Format("January 2, 2006"),
			r.DonationID,
		),
	})
}

// SendFailure queues a payment-declined notice.
func (n *Notifier) SendFailure(f Failure) {
	name := strings.TrimSpace(f.DonorName)
	if name == "" {
		name = "Friend"
	}
	reason := strings.TrimSpace(f.Reason)
	if reason == "" {
		reason = "the payment could not be completed"
	}
	n.enqueue(Message{
		Kind:    KindFailure,
		To:      f.DonorEmail,
		Subject: "We couldn't process your donation",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUnfortunately %s. No charge was recorded.\nPlease try again or use another payment method.",
			name,
			reason,
		),
	})
}

// SendAdminAlert queues an operational notice for site operators.
func (n *Notifier) SendAdminAlert(to, subject, body string) {
	n.enqueue(Message{
		Kind:    KindAdminAlert,
		To:      to,
		Subject: subject,
		Body:    body,
	})
}

// Ping verifies the provider is reachable.
func (n *Notifier) Ping(ctx context.Context) error {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := n.provider.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
