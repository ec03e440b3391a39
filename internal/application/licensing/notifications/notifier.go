// Package notifications mails distributors and learners about licensing events.
package notifications

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/email"
	mailtemplate "github.com/orris-inc/licensing/internal/infrastructure/template"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/services/markdown"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

const handleTimeout = time.Minute

// Deduplicator claims a mail for one recipient so it is sent at most once.
type Deduplicator interface {
	TryAcquire(ctx context.Context, kind, reference string, recipientID uint) (bool, error)
	Release(ctx context.Context, kind, reference string, recipientID uint) error
}

// TemplateSource resolves mail templates by name.
type TemplateSource interface {
	Get(name string) (*template.Template, bool)
}

type Config struct {
	SiteURL string
}

// Notifier turns licensing events into mails.
type Notifier struct {
	sender         email.Sender
	dedupe         Deduplicator
	templates      TemplateSource
	markdown       markdown.MarkdownService
	userRepo       account.Repository
	productSetRepo licensing.ProductSetRepository
	targetSetRepo  licensing.TargetSetRepository
	registry       *licensing.Registry
	cfg            Config
	logger         logger.Interface
}

// NewNotifier builds a notifier. dedupe may be nil, in which case every
// event is mailed.
func NewNotifier(
	sender email.Sender,
	dedupe Deduplicator,
	templates TemplateSource,
	markdownSvc markdown.MarkdownService,
	userRepo account.Repository,
	productSetRepo licensing.ProductSetRepository,
	targetSetRepo licensing.TargetSetRepository,
	registry *licensing.Registry,
	cfg Config,
	logger logger.Interface,
) *Notifier {
	return &Notifier{
		sender:         sender,
		dedupe:         dedupe,
		templates:      templates,
		markdown:       markdownSvc,
		userRepo:       userRepo,
		productSetRepo: productSetRepo,
		targetSetRepo:  targetSetRepo,
		registry:       registry,
		cfg:            cfg,
		logger:         logger,
	}
}

// Register subscribes the notifier to every event it mails about.
func (n *Notifier) Register(sub events.EventSubscriber) error {
	handlers := map[string]func(context.Context, events.DomainEvent) error{
		licensing.EventTypeAllocationCreated:           n.handleAllocationCreated,
		licensing.EventTypeDistributionLicencesCreated: n.handleLicencesCreated,
		licensing.EventTypeDistributionEnrolmentFailed: n.handleEnrolmentFailed,
		licensing.EventTypeUserCSVImportFailed:         n.handleImportFailed,
		account.EventTypeUserCreated:                   n.handleUserCreated,
	}
	for eventType, fn := range handlers {
		fn := fn
		handler := events.NewSimpleEventHandler(eventType, func(e events.DomainEvent) error {
			ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
			defer cancel()
			return fn(ctx, e)
		})
		if err := sub.Subscribe(eventType, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

// send renders tmplName for user and delivers it once per (tmplName, reference, user).
func (n *Notifier) send(ctx context.Context, tmplName, reference string, user *account.User, data map[string]any) error {
	if strings.TrimSpace(user.Email()) == "" {
		n.logger.Debugw("recipient has no email, skipping", "template", tmplName, "user_id", user.ID())
		return nil
	}

	if n.dedupe != nil {
		acquired, err := n.dedupe.TryAcquire(ctx, tmplName, reference, user.ID())
		if err != nil {
			n.logger.Warnw("mail deduplication unavailable, sending anyway", "template", tmplName, "error", err)
		} else if !acquired {
			n.logger.Debugw("mail already sent, skipping", "template", tmplName, "reference", reference, "user_id", user.ID())
			return nil
		}
	}

	msg, err := n.render(tmplName, user, data)
	if err == nil {
		err = n.sender.Send(ctx, msg)
	}
	if err != nil {
		if n.dedupe != nil {
			if relErr := n.dedupe.Release(context.WithoutCancel(ctx), tmplName, reference, user.ID()); relErr != nil {
				n.logger.Warnw("failed to release mail claim", "template", tmplName, "error", relErr)
			}
		}
		return fmt.Errorf("failed to send %s mail to user %d: %w", tmplName, user.ID(), err)
	}

	n.logger.Infow("notification sent", "template", tmplName, "reference", reference, "user_id", user.ID(), "to", utils.MaskEmail(user.Email()))
	return nil
}

func (n *Notifier) render(tmplName string, user *account.User, data map[string]any) (email.Message, error) {
	tmpl, ok := n.templates.Get(tmplName)
	if !ok {
		return email.Message{}, fmt.Errorf("mail template %s not loaded", tmplName)
	}

	vars := make(map[string]any, len(data)+2)
	for k, v := range data {
		vars[k] = v
	}
	vars["RecipientName"] = recipientName(user)
	vars["SiteURL"] = n.cfg.SiteURL

	var subject bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, mailtemplate.BlockSubject, vars); err != nil {
		return email.Message{}, fmt.Errorf("failed to render subject of %s: %w", tmplName, err)
	}
	htmlBody, plainBody, err := n.markdown.Render(tmpl.Lookup(mailtemplate.BlockBody), vars)
	if err != nil {
		return email.Message{}, err
	}

	return email.Message{
		To:        user.Email(),
		ToName:    user.FullName(),
		Subject:   strings.TrimSpace(subject.String()),
		HTMLBody:  htmlBody,
		PlainBody: plainBody,
	}, nil
}

func recipientName(u *account.User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username()
}

func formatDate(t time.Time) string {
	return biztime.FormatDate(t)
}
