package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	mailtemplate "github.com/orris-inc/licensing/internal/infrastructure/template"
)

var importFailureReasons = map[string]string{
	licensing.ImportErrorCSVParse:             "the file is not a valid roster",
	licensing.ImportErrorMissingTarget:        "you do not belong to any organisation of this allocation",
	licensing.ImportErrorInsufficientLicences: "the allocation does not have enough licences left",
	licensing.ImportErrorUserCollision:        "a username in the file belongs to another account",
	licensing.ImportErrorInternal:             "an internal error occurred",
}

// handleAllocationCreated mails the distributors who belong to one of the
// allocation's targets.
func (n *Notifier) handleAllocationCreated(ctx context.Context, e events.DomainEvent) error {
	event, ok := e.(licensing.AllocationCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}

	targetSet, err := n.targetSetRepo.GetByID(ctx, event.TargetSetID)
	if err != nil {
		return fmt.Errorf("failed to load target set: %w", err)
	}
	productSet, err := n.productSetRepo.GetByID(ctx, event.ProductSetID)
	if err != nil {
		return fmt.Errorf("failed to load product set: %w", err)
	}

	recipients, err := n.distributorsOf(ctx, targetSet)
	if err != nil {
		return err
	}

	data := map[string]any{
		"TargetSetName":  targetSet.Name(),
		"ProductSetName": productSet.Name(),
		"Count":          event.Count,
		"StartDate":      formatDate(event.StartDate),
		"EndDate":        formatDate(event.EndDate),
	}
	var errs []error
	for _, u := range recipients {
		if err := n.send(ctx, mailtemplate.MailAllocationCreated, event.GetAggregateID(), u, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) distributorsOf(ctx context.Context, set *licensing.TargetSet) ([]*account.User, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, targetType := range n.registry.TargetTypes() {
		targets := set.TargetsOfType(targetType)
		if len(targets) == 0 {
			continue
		}
		handler, err := n.registry.Target(targetType)
		if err != nil {
			return nil, err
		}
		itemIDs := make([]uint, len(targets))
		for i, t := range targets {
			itemIDs[i] = t.ItemID()
		}
		members, err := handler.UsersIn(ctx, itemIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s targets: %w", targetType, err)
		}
		for _, id := range members {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := n.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load target members: %w", err)
	}
	out := make([]*account.User, 0, len(users))
	for _, u := range users {
		if u.IsDistributor() {
			out = append(out, u)
		}
	}
	return out, nil
}

// handleLicencesCreated mails each enrolled learner and the distributor.
func (n *Notifier) handleLicencesCreated(ctx context.Context, e events.DomainEvent) error {
	event, ok := e.(licensing.DistributionLicencesCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}

	productName, productURL := n.describeProduct(ctx, event.ProductType, event.ProductItemID)
	data := map[string]any{
		"ProductName": productName,
		"ProductURL":  productURL,
		"UserCount":   len(event.UserIDs),
		"Enrolled":    event.Enrolled,
	}

	var errs []error
	if event.Enrolled && len(event.UserIDs) > 0 {
		learners, err := n.userRepo.GetByIDs(ctx, event.UserIDs)
		if err != nil {
			return fmt.Errorf("failed to load learners: %w", err)
		}
		for _, u := range learners {
			if err := n.send(ctx, mailtemplate.MailLicenceGranted, event.GetAggregateID(), u, data); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := n.mailUser(ctx, event.CreatedBy, mailtemplate.MailDistributionCompleted, event.GetAggregateID()+":"+event.RunID, data); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *Notifier) describeProduct(ctx context.Context, productType string, itemID uint) (string, string) {
	handler, err := n.registry.Product(productType)
	if err != nil {
		return productType, ""
	}
	name, err := handler.ItemName(ctx, itemID)
	if err != nil {
		n.logger.Warnw("failed to resolve product name", "product_type", productType, "item_id", itemID, "error", err)
		name = fmt.Sprintf("%s %d", productType, itemID)
	}
	return name, handler.ItemURL(itemID)
}

// handleUserCreated sends the welcome mail carrying the initial password.
func (n *Notifier) handleUserCreated(ctx context.Context, e events.DomainEvent) error {
	event, ok := e.(account.UserCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	user, err := n.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to load created user: %w", err)
	}
	return n.send(ctx, mailtemplate.MailUserCreated, event.GetAggregateID(), user, map[string]any{
		"Username": event.Username,
		"Password": event.Password,
	})
}

// handleImportFailed tells the distribution creator why the roster was rejected.
func (n *Notifier) handleImportFailed(ctx context.Context, e events.DomainEvent) error {
	event, ok := e.(licensing.UserCSVImportFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	reason, ok := importFailureReasons[event.ErrorCode]
	if !ok {
		reason = importFailureReasons[licensing.ImportErrorInternal]
	}
	reference := fmt.Sprintf("%s@%d", event.GetAggregateID(), event.GetOccurredAt().UnixNano())
	return n.mailUser(ctx, event.RelatedUserID, mailtemplate.MailImportFailed, reference, map[string]any{
		"DistributionID": event.DistributionID,
		"Reason":         reason,
		"Line":           event.Line,
		"Message":        event.Message,
	})
}

func (n *Notifier) handleEnrolmentFailed(ctx context.Context, e events.DomainEvent) error {
	event, ok := e.(licensing.DistributionEnrolmentFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	return n.mailUser(ctx, event.CreatedBy, mailtemplate.MailEnrolmentFailed, event.GetAggregateID()+":"+event.RunID, map[string]any{
		"DistributionID": event.DistributionID,
		"ProductType":    event.ProductType,
		"Message":        event.Message,
	})
}

func (n *Notifier) mailUser(ctx context.Context, userID uint, tmplName, reference string, data map[string]any) error {
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			n.logger.Warnw("notification recipient not found", "template", tmplName, "user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	return n.send(ctx, tmplName, reference, user, data)
}
