package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/metrics"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderService places orders against product stock. Stock is reserved with
// conditional decrements so it never goes negative.
type OrderService struct {
	Orders   store.Collection[models.Order]
	Products store.Collection[models.Product]
	Pub      queue.Publisher
	Log      *zap.Logger
}

type ItemInput struct {
	Product  primitive.ObjectID `json:"product" validate:"required"`
	Quantity int                `json:"quantity" validate:"gt=0"`
}

type ContactInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

type OrderInput struct {
	Products        []ItemInput    `json:"products" validate:"min=1,dive"`
	ShippingAddress models.Address `json:"shippingAddress"`
	Contact         ContactInput   `json:"contact"`
}

// OrderUpdate is an admin edit. Nil fields are left unchanged.
type OrderUpdate struct {
	Contact         *ContactInput   `json:"contact"`
	ShippingAddress *models.Address `json:"shippingAddress"`
	Products        []ItemInput     `json:"products" validate:"omitempty,min=1,dive"`
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
}

// Buyer is the authenticated account placing an order.
type Buyer struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

func (s *OrderService) Create(ctx context.Context, buyer Buyer, in OrderInput) (*models.Order, error) {
	cleanAddress(&in.ShippingAddress)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	contact := models.OrderContact{UserID: buyer.ID, Name: buyer.Name, Email: buyer.Email}
	applyContact(&contact, &in.Contact)
	if err := validation.Struct(&contact); err != nil {
		return nil, err
	}

	items, err := s.snapshot(ctx, in.Products, nil)
	if err != nil {
		return nil, err
	}

	t := now()
	o := &models.Order{
		ID:              primitive.NewObjectID(),
		User:            contact,
		Products:        items,
		Status:          models.OrderPending,
		ShippingAddress: in.ShippingAddress,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       t,
		UpdatedAt:       t,
	}
	o.TotalAmount = o.Total()
	if err := validation.Struct(o); err != nil {
		return nil, err
	}

	qty := o.Quantities()
	if err := s.reserve(ctx, qty); err != nil {
		return nil, err
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		s.release(ctx, qty)
		return nil, translate(err, "order")
	}

	metrics.OrdersCreated.Inc()
	publish(ctx, s.Pub, s.Log, queue.OrderCreated, queue.OrderPlaced{
		OrderID: o.ID, UserID: buyer.ID, Email: contact.Email, Total: o.TotalAmount,
	})
	return o, nil
}

// snapshot resolves validated items to order lines with the current product
// title and price. Lines already on the order keep their original price.
func (s *OrderService) snapshot(ctx context.Context, in []ItemInput, existing []models.OrderItem) ([]models.OrderItem, error) {
	prices := map[primitive.ObjectID]models.OrderItem{}
	for _, it := range existing {
		prices[it.Product] = it
	}

	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		if prev, ok := prices[it.Product]; ok {
			items = append(items, models.OrderItem{Product: it.Product, Title: prev.Title, Quantity: it.Quantity, Price: prev.Price})
			continue
		}
		p, err := s.Products.Get(ctx, it.Product)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFoundf("product %s not found", it.Product.Hex())
			}
			return nil, translate(err, "product")
		}
		items = append(items, models.OrderItem{Product: p.ID, Title: p.Title, Quantity: it.Quantity, Price: p.Price})
	}
	return items, nil
}

// reserve takes qty from stock for every product, or nothing at all.
func (s *OrderService) reserve(ctx context.Context, qty map[primitive.ObjectID]int) error {
	ids := sortedIDs(qty)
	taken := make(map[primitive.ObjectID]int, len(ids))
	for _, id := range ids {
		n := qty[id]
		if n <= 0 {
			continue
		}
		_, err := s.Products.Increment(ctx, id, store.Match{"stock": store.AtLeast{N: n}}, "stock", -n)
		if err != nil {
			s.release(ctx, taken)
			switch {
			case errors.Is(err, store.ErrConflict):
				return apperr.Newf(apperr.Conflict, "insufficient stock for product %s", id.Hex())
			case errors.Is(err, store.ErrNotFound):
				return apperr.NotFoundf("product %s not found", id.Hex())
			}
			return translate(err, "product")
		}
		taken[id] = n
	}
	return nil
}

// release returns stock. Products deleted since the order was placed are
// skipped.
func (s *OrderService) release(ctx context.Context, qty map[primitive.ObjectID]int) {
	for _, id := range sortedIDs(qty) {
		n := qty[id]
		if n <= 0 {
			continue
		}
		if _, err := s.Products.Increment(ctx, id, nil, "stock", n); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.Log.Error("stock release failed", zap.String("product_id", id.Hex()), zap.Int("quantity", n), zap.Error(err))
		}
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID, p Page) (*List[models.Order], error) {
	return list(ctx, s.Orders, store.Query{Where: store.Match{"user.userId": userID}}, p)
}

func (s *OrderService) ListAll(ctx context.Context, f OrderFilter, p Page) (*List[models.Order], error) {
	where := store.Match{}
	if f.Status != "" {
		st, ok := models.ParseFulfillmentStatus(f.Status)
		if !ok {
			return nil, invalidStatus("status", "pending confirmed shipped delivered cancelled")
		}
		where["status"] = st
	}
	if f.PaymentStatus != "" {
		st, ok := models.ParsePaymentStatus(f.PaymentStatus)
		if !ok {
			return nil, invalidStatus("paymentStatus", "pending completed failed")
		}
		where["paymentStatus"] = st
	}
	return list(ctx, s.Orders, store.Query{Where: where}, p)
}

// Get returns the order to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID, actor moderation.Actor) (*models.Order, error) {
	o, err := get(ctx, s.Orders, id, "order")
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && o.User.UserID != actor.UserID {
		return nil, apperr.New(apperr.Forbidden, "you can only view your own orders")
	}
	return o, nil
}

// Update edits contact, address and item quantities. Stock follows the
// quantity changes; a failed write gives the stock back.
func (s *OrderService) Update(ctx context.Context, id primitive.ObjectID, in OrderUpdate) (*models.Order, error) {
	if in.ShippingAddress != nil {
		cleanAddress(in.ShippingAddress)
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	old, err := get(ctx, s.Orders, id, "order")
	if err != nil {
		return nil, err
	}
	next, err := clone(old)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "", err)
	}

	if in.Contact != nil {
		applyContact(&next.User, in.Contact)
	}
	if in.ShippingAddress != nil {
		next.ShippingAddress = *in.ShippingAddress
	}

	var reserved, released map[primitive.ObjectID]int
	if in.Products != nil {
		if !old.Status.HoldsStock() || old.Status == models.OrderShipped || old.Status == models.OrderDelivered {
			return nil, apperr.Newf(apperr.Conflict, "items of a %s order cannot be changed", old.Status)
		}
		if next.Products, err = s.snapshot(ctx, in.Products, old.Products); err != nil {
			return nil, err
		}
		reserved, released = stockDelta(old.Quantities(), next.Quantities())
	}

	next.TotalAmount = next.Total()
	next.UpdatedAt = now()
	if err := validation.Struct(next); err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, reserved); err != nil {
		return nil, err
	}
	if err := s.Orders.Replace(ctx, id, store.Match{"updatedAt": old.UpdatedAt}, next); err != nil {
		s.release(ctx, reserved)
		return nil, translate(err, "order")
	}
	s.release(ctx, released)
	return next, nil
}

// SetStatus moves the order along its lifecycle. Cancelling gives the stock
// back.
func (s *OrderService) SetStatus(ctx context.Context, id primitive.ObjectID, target string) (*models.Order, error) {
	to, ok := models.ParseFulfillmentStatus(target)
	if !ok {
		return nil, invalidStatus("status", "pending confirmed shipped delivered cancelled")
	}
	o, err := get(ctx, s.Orders, id, "order")
	if err != nil {
		return nil, err
	}
	if !o.Status.CanMoveTo(to) {
		return nil, apperr.Newf(apperr.Conflict, "cannot move order from %s to %s", o.Status, to)
	}

	// Pinning updatedAt keeps an interleaved item edit from changing what
	// the released stock should be.
	updated, err := s.Orders.Update(ctx, id, store.Match{"status": o.Status, "updatedAt": o.UpdatedAt},
		store.Fields{"status": to, "updatedAt": now()})
	if err != nil {
		return nil, translate(err, "order")
	}
	if o.Status.HoldsStock() && !to.HoldsStock() {
		s.release(ctx, updated.Quantities())
	}

	publish(ctx, s.Pub, s.Log, queue.OrderStatusChanged, queue.OrderStatus{
		OrderID: id, From: string(o.Status), To: string(to),
	})
	return updated, nil
}

func (s *OrderService) SetPayment(ctx context.Context, id primitive.ObjectID, target string) (*models.Order, error) {
	st, ok := models.ParsePaymentStatus(target)
	if !ok {
		return nil, invalidStatus("paymentStatus", "pending completed failed")
	}
	updated, err := s.Orders.Update(ctx, id, nil, store.Fields{"paymentStatus": st, "updatedAt": now()})
	if err != nil {
		return nil, translate(err, "order")
	}
	return updated, nil
}

// Delete removes an order. Stock held by an unshipped order is given back.
func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	o, err := get(ctx, s.Orders, id, "order")
	if err != nil {
		return err
	}
	gone, err := s.Orders.Delete(ctx, id, store.Match{"status": o.Status, "updatedAt": o.UpdatedAt})
	if err != nil {
		return translate(err, "order")
	}
	if gone.Status == models.OrderPending || gone.Status == models.OrderConfirmed {
		s.release(ctx, gone.Quantities())
	}
	return nil
}

func stockDelta(before, after map[primitive.ObjectID]int) (reserve, release map[primitive.ObjectID]int) {
	reserve = map[primitive.ObjectID]int{}
	release = map[primitive.ObjectID]int{}
	for id, n := range after {
		if d := n - before[id]; d > 0 {
			reserve[id] = d
		} else if d < 0 {
			release[id] = -d
		}
	}
	for id, n := range before {
		if _, ok := after[id]; !ok {
			release[id] = n
		}
	}
	return reserve, release
}

func applyContact(c *models.OrderContact, in *ContactInput) {
	if name := sanitize.Text(in.Name); name != "" {
		c.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
		c.Email = email
	}
	if phone := sanitize.Text(in.Phone); phone != "" {
		c.Phone = phone
	}
}

func cleanAddress(a *models.Address) {
	a.Street = sanitize.Text(a.Street)
	a.City = sanitize.Text(a.City)
	a.State = sanitize.Text(a.State)
	a.PostalCode = sanitize.Text(a.PostalCode)
	a.Country = sanitize.Text(a.Country)
}

func invalidStatus(field, allowed string) error {
	return apperr.ValidationFields("invalid "+field, map[string]string{
		field: field + " must be one of [" + allowed + "]",
	})
}

func sortedIDs(m map[primitive.ObjectID]int) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}
