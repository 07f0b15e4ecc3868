package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/coupon"
	"github.com/lara-shop/lara-api/internal/notification"
	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/user"
)

var (
	ErrNoItems           = errors.New("order must contain at least one item")
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrForbidden         = errors.New("not authorized for this order")
	ErrCannotCancel      = errors.New("cannot cancel order after it has been shipped or delivered")
)

// Catalog is the slice of the product store the order lifecycle needs:
// bulk lookup for authoritative pricing and the two atomic stock
// mutations. product.Repository satisfies it.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error)
	DecrementStockIfAvailable(ctx context.Context, productID uuid.UUID, size product.Size, qty int) (bool, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, size product.Size, qty int) error
}

// CouponValidator is satisfied by coupon.Service.
type CouponValidator interface {
	Validate(ctx context.Context, code string) (*coupon.Coupon, error)
}

// BuyerDirectory resolves the buyer for notifications. user.Service
// satisfies it.
type BuyerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service interface {
	Create(ctx context.Context, input CreateInput, buyerID uuid.UUID) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (*Order, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error)
	UpdateLineStatus(ctx context.Context, orderID, lineID uuid.UUID, status Status, actorID uuid.UUID, actorIsAdmin bool) (*Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*Order, error)
	// MarkDelivered is the administrative override: every line goes to
	// Delivered regardless of current state. Authorization (admin only)
	// is enforced at the transport layer.
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*Order, error)
	Invoice(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (string, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	coupons  CouponValidator
	buyers   BuyerDirectory
	notifier notification.Sender
}

func NewService(repo Repository, catalog Catalog, coupons CouponValidator, buyers BuyerDirectory, notifier notification.Sender) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		coupons:  coupons,
		buyers:   buyers,
		notifier: notifier,
	}
}

// Create builds and persists an order from client-requested lines.
// Prices, titles and vendor references always come from the catalog;
// the client's own price estimate is ignored. All validation happens
// before persistence. Stock decrements happen after persistence and
// are not rolled back on failure (see the reconciliation log below).
func (s *service) Create(ctx context.Context, input CreateInput, buyerID uuid.UUID) (*Order, error) {
	if len(input.Lines) == 0 {
		log.Warn().Stringer("user_id", buyerID).Msg("service: attempt to create order with no items")
		return nil, ErrNoItems
	}

	ids := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch products for order: %w", err)
	}
	byID := make(map[uuid.UUID]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]Line, 0, len(input.Lines))
	for _, requested := range input.Lines {
		p, ok := byID[requested.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, requested.ProductID)
		}

		variant := p.VariantBySize(requested.Size)
		if variant == nil {
			return nil, fmt.Errorf("%w: %s for product %s", ErrVariantNotFound, requested.Size, p.Title)
		}

		if requested.Quantity <= 0 {
			return nil, fmt.Errorf("service: quantity for %s must be greater than zero", p.Title)
		}
		if variant.Stock < requested.Quantity {
			return nil, fmt.Errorf("%w: %s (%s)", ErrInsufficientStock, p.Title, variant.Size)
		}

		lines = append(lines, Line{
			ProductID: p.ID,
			VendorID:  p.UserID,
			Title:     p.Title,
			Image:     p.Image,
			Size:      variant.Size,
			Price:     variant.Price,
			Quantity:  requested.Quantity,
			Status:    StatusProcessing,
		})
	}

	itemsPrice := ItemsPrice(lines)

	// A coupon that fails validation here is ignored, not rejected:
	// the order proceeds at full price with no stored code.
	discountPercentage := 0
	couponCode := ""
	if input.CouponCode != "" {
		c, err := s.coupons.Validate(ctx, input.CouponCode)
		if err == nil {
			discountPercentage = c.DiscountPercentage
			couponCode = c.Code
		} else if !errors.Is(err, coupon.ErrInvalidOrExpired) {
			log.Warn().Err(err).Str("code", input.CouponCode).Msg("service: coupon lookup failed, proceeding without discount")
		}
	}

	totals := ComputeTotals(itemsPrice, discountPercentage)

	o := &Order{
		UserID:          buyerID,
		Status:          StatusProcessing,
		Lines:           lines,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      totals.ItemsPrice,
		DiscountPrice:   totals.DiscountPrice,
		ShippingPrice:   totals.ShippingPrice,
		TaxPrice:        totals.TaxPrice,
		TotalPrice:      totals.TotalPrice,
		CouponCode:      couponCode,
		IsPaid:          false,
	}

	if _, err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	// Conditional decrements, one guarded write per line. A no-op here
	// means a concurrent order won the race after our stock check; the
	// order is not rolled back, it is flagged for manual reconciliation.
	for i := range o.Lines {
		line := &o.Lines[i]
		ok, err := s.catalog.DecrementStockIfAvailable(ctx, line.ProductID, line.Size, line.Quantity)
		if err != nil {
			log.Error().Err(err).
				Stringer("order_id", o.ID).
				Stringer("product_id", line.ProductID).
				Msg("service: stock decrement failed after order persisted, needs reconciliation")
			continue
		}
		if !ok {
			log.Error().
				Stringer("order_id", o.ID).
				Stringer("product_id", line.ProductID).
				Str("size", string(line.Size)).
				Int("quantity", line.Quantity).
				Msg("service: stock decrement guard failed after order persisted, needs reconciliation")
		}
	}

	s.notify(ctx, o.UserID, "Order Confirmation - LARA",
		fmt.Sprintf("Thank you for your order! Your order #%s has been placed successfully.", o.ID))

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", buyerID).Float64("total", o.TotalPrice).Msg("service: order created")
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	// Owner, admin, or a vendor with at least one line in the order.
	if !actorIsAdmin && o.UserID != actorID && !vendorInvolved(o, actorID) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch vendor orders: %w", err)
	}
	return orders, nil
}

// UpdateLineStatus sets one line's status and recomputes the aggregate.
// Lines move freely between the four states; only the aggregate follows
// the derivation precedence.
func (s *service) UpdateLineStatus(ctx context.Context, orderID, lineID uuid.UUID, status Status, actorID uuid.UUID, actorIsAdmin bool) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for status update: %w", err)
	}

	var line *Line
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			line = &o.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, ErrLineNotFound
	}

	// A line with no vendor reference is never matchable by a
	// non-admin caller.
	if line.VendorID != actorID && !actorIsAdmin {
		return nil, ErrForbidden
	}

	line.Status = status
	s.applyDerivedStatus(o)

	if err := s.repo.UpdateStatuses(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to persist status update for order %s: %w", orderID, err)
	}

	s.notify(ctx, o.UserID, fmt.Sprintf("Order Update - Item %s", status),
		fmt.Sprintf("The status of your item %q in order #%s has been updated to: %s.", line.Title, o.ID, status))

	log.Info().
		Stringer("order_id", orderID).
		Stringer("item_id", lineID).
		Stringer("status", status).
		Stringer("aggregate", o.Status).
		Msg("service: order item status updated")
	return o, nil
}

// Cancel is the user-initiated path: only the order's owner, and only
// while the aggregate is still Processing. Stock restoration is the
// unconditional inverse of creation's conditional decrement.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for cancel: %w", err)
	}

	if o.UserID != actorID {
		return nil, ErrForbidden
	}
	if o.Status != StatusProcessing {
		return nil, ErrCannotCancel
	}

	o.Status = StatusCancelled
	for i := range o.Lines {
		o.Lines[i].Status = StatusCancelled
	}

	if err := s.repo.UpdateStatuses(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to persist cancellation for order %s: %w", orderID, err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		if err := s.catalog.RestoreStock(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			log.Error().Err(err).
				Stringer("order_id", orderID).
				Stringer("product_id", line.ProductID).
				Msg("service: failed to restore stock on cancellation")
		}
	}

	s.notify(ctx, o.UserID, "Order Cancelled - LARA",
		fmt.Sprintf("Your order #%s has been successfully cancelled.", o.ID))

	log.Info().Stringer("order_id", orderID).Msg("service: order cancelled")
	return o, nil
}

func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for delivery: %w", err)
	}

	now := time.Now().UTC()
	o.Status = StatusDelivered
	o.IsDelivered = true
	o.DeliveredAt = &now
	for i := range o.Lines {
		o.Lines[i].Status = StatusDelivered
	}

	if err := s.repo.UpdateStatuses(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to persist delivery for order %s: %w", orderID, err)
	}

	s.notify(ctx, o.UserID, "Order Delivered - LARA",
		fmt.Sprintf("Good news! Your order #%s has been fully delivered. We hope you enjoy your purchase!", o.ID))

	log.Info().Stringer("order_id", orderID).Msg("service: order marked delivered")
	return o, nil
}

func (s *service) Invoice(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (string, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("service: failed to fetch order for invoice: %w", err)
	}

	if o.UserID != actorID && !actorIsAdmin {
		return "", ErrForbidden
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INVOICE #%s\n", o.ID)
	fmt.Fprintf(&b, "Date: %s\n", o.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Ship to: %s, %s %s, %s\n", o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.PostalCode, o.ShippingAddress.Country)
	b.WriteString("-----------------------------------\n")
	for i := range o.Lines {
		line := &o.Lines[i]
		fmt.Fprintf(&b, "%s (%s) x %d - $%.2f\n", line.Title, line.Size, line.Quantity, line.Price)
	}
	b.WriteString("-----------------------------------\n")
	fmt.Fprintf(&b, "Items: $%.2f\n", o.ItemsPrice)
	if o.DiscountPrice > 0 {
		fmt.Fprintf(&b, "Discount (%s): -$%.2f\n", o.CouponCode, o.DiscountPrice)
	}
	fmt.Fprintf(&b, "Shipping: $%.2f\n", o.ShippingPrice)
	fmt.Fprintf(&b, "Tax: $%.2f\n", o.TaxPrice)
	fmt.Fprintf(&b, "Total: $%.2f\n", o.TotalPrice)
	if o.IsPaid {
		b.WriteString("Status: PAID\n")
	} else {
		b.WriteString("Status: PENDING\n")
	}
	return b.String(), nil
}

// applyDerivedStatus recomputes the aggregate from the lines and keeps
// the delivery flag in sync when the aggregate reaches Delivered.
func (s *service) applyDerivedStatus(o *Order) {
	o.Status = DeriveStatus(o.Lines)
	if o.Status == StatusDelivered && !o.IsDelivered {
		now := time.Now().UTC()
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
}

func vendorInvolved(o *Order, vendorID uuid.UUID) bool {
	for i := range o.Lines {
		if o.Lines[i].VendorID == vendorID {
			return true
		}
	}
	return false
}

// notify resolves the buyer and dispatches a message. Failures are
// logged and swallowed; they never fail the triggering operation.
func (s *service) notify(ctx context.Context, buyerID uuid.UUID, subject, body string) {
	buyer, err := s.buyers.GetByID(ctx, buyerID)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", buyerID).Msg("service: failed to resolve buyer for notification")
		return
	}

	msg := notification.Message{To: buyer.Email, Subject: subject, Body: body}
	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Warn().Err(err).Str("to", buyer.Email).Str("subject", subject).Msg("service: failed to send notification")
	}
}
