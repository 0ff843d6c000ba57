package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const createNumberRetries = 5

// Service executes document workflows: creation with generated numbers,
// line item edits, and status transitions with their stock side effects.
// Every transition runs in one database transaction; the status change
// and the inventory adjustment commit or roll back together.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// createWithNumber runs create with a freshly generated number, retrying
// on unique-constraint conflicts from concurrent creations.
func (s *Service) createWithNumber(ctx context.Context, kind string, create func(tx *gorm.DB, number string) error) error {
	for attempt := 0; attempt < createNumberRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := NextNumber(tx, kind, time.Now())
			if err != nil {
				return err
			}
			return create(tx, number)
		})
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return err
		}
		zap.L().Warn("document number conflict, retrying",
			zap.String("kind", kind), zap.Int("attempt", attempt+1))
	}
	return ErrNumberConflict
}

// movementsApplied reports whether the document's stock adjustment has
// already been recorded in the ledger.
func movementsApplied(tx *gorm.DB, kind string, docID int64) (bool, error) {
	var count int64
	err := tx.Model(&domain.WmsStockMovement{}).
		Where("doc_kind = ? AND doc_id = ?", kind, docID).
		Count(&count).Error
	return count > 0, err
}

// productDelta is one aggregated stock change for a product
type productDelta struct {
	ProductID int64
	Delta     int64
}

// aggregateDeltas sums per-product deltas and orders them by product id
// so concurrent transactions lock product rows in the same order.
func aggregateDeltas(deltas map[int64]int64) []productDelta {
	out := make([]productDelta, 0, len(deltas))
	for id, delta := range deltas {
		out = append(out, productDelta{ProductID: id, Delta: delta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// applyDeltas adjusts stock and writes one ledger row per product
func applyDeltas(tx *gorm.DB, kind string, docID int64, docNumber string, deltas []productDelta, reason string) error {
	for _, pd := range deltas {
		if err := adjustStock(tx, pd.ProductID, pd.Delta); err != nil {
			return err
		}
		if err := recordMovement(tx, kind, docID, docNumber, pd.ProductID, pd.Delta, reason); err != nil {
			return err
		}
	}
	return nil
}

// adjustStock applies an atomic increment to a product's on-hand
// quantity relative to the stored value. The predicate keeps on-hand
// from going negative under concurrent validations.
func adjustStock(tx *gorm.DB, productID, delta int64) error {
	res := tx.Model(&domain.WmsProduct{}).
		Where("id = ? AND on_hand_qty + ? >= 0", productID, delta).
		Updates(map[string]interface{}{
			"on_hand_qty": gorm.Expr("on_hand_qty + ?", delta),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&domain.WmsProduct{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.Wrapf(ErrProductNotFound, "product %d", productID)
		}
		return errors.Wrapf(ErrInsufficientStock, "product %d delta %d", productID, delta)
	}
	if delta < 0 {
		// reserved may never exceed on-hand
		if err := tx.Model(&domain.WmsProduct{}).
			Where("id = ? AND reserved_qty > on_hand_qty", productID).
			Update("reserved_qty", gorm.Expr("on_hand_qty")).Error; err != nil {
			return err
		}
	}
	return nil
}

// recordMovement writes the ledger row for one adjusted product. The
// unique (doc_kind, doc_id, product_id) index turns a concurrent double
// apply into a transaction failure instead of a double count.
func recordMovement(tx *gorm.DB, kind string, docID int64, docNumber string, productID, delta int64, reason string) error {
	return tx.Create(&domain.WmsStockMovement{
		ID:        common.UUIDint64(),
		DocKind:   kind,
		DocId:     docID,
		ProductId: productID,
		DocNumber: docNumber,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: time.Now(),
	}).Error
}

// ------------------------------------------------------------------
// Receipts
// ------------------------------------------------------------------

// CreateReceipt initializes a receipt in draft with a generated number
func (s *Service) CreateReceipt(ctx context.Context, rec *domain.WmsReceipt) error {
	return s.createWithNumber(ctx, domain.DocKindReceipt, func(tx *gorm.DB, number string) error {
		rec.ID = common.UUIDint64()
		rec.Number = number
		rec.Status = InitialStatus(domain.DocKindReceipt)
		rec.CreatedAt = time.Now()
		rec.UpdatedAt = time.Now()
		for i := range rec.Items {
			if err := validateReceiptItem(&rec.Items[i]); err != nil {
				return err
			}
			rec.Items[i].ID = common.UUIDint64()
			rec.Items[i].ReceiptId = rec.ID
			rec.Items[i].Sort = i
		}
		return tx.Create(rec).Error
	})
}

// GetReceipt loads a receipt with its ordered items
func (s *Service) GetReceipt(ctx context.Context, id int64) (*domain.WmsReceipt, error) {
	var rec domain.WmsReceipt
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
		First(&rec, id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func validateReceiptItem(item *domain.WmsReceiptItem) error {
	if item.QtyReceived < 0 {
		return &ValidationError{Message: "Received quantity cannot be negative"}
	}
	if item.Price.IsNegative() {
		return &ValidationError{Message: "Price cannot be negative"}
	}
	return nil
}

// UpdateReceiptItems replaces the receipt's line item set. Editing is
// locked once the receipt is done.
func (s *Service) UpdateReceiptItems(ctx context.Context, id int64, items []domain.WmsReceiptItem) (*domain.WmsReceipt, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.WmsReceipt
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		if rec.IsTerminal() {
			return errors.Wrapf(ErrDocumentLocked, "receipt %s is done", rec.Number)
		}
		for i := range items {
			if err := validateReceiptItem(&items[i]); err != nil {
				return err
			}
		}
		if err := tx.Where("receipt_id = ?", id).Delete(&domain.WmsReceiptItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = common.UUIDint64()
			items[i].ReceiptId = id
			items[i].Sort = i
			items[i].CreatedAt = time.Now()
			items[i].UpdatedAt = time.Now()
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.WmsReceipt{}).Where("id = ?", id).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetReceipt(ctx, id)
}

// TransitionReceipt runs the guard and, if it passes, applies the new
// status. Entering done applies the stock increase in the same
// transaction, at most once per receipt lifetime.
func (s *Service) TransitionReceipt(ctx context.Context, id int64, target string) (*domain.WmsReceipt, error) {
	var out *domain.WmsReceipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.WmsReceipt
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
			First(&rec, id).Error; err != nil {
			return err
		}
		if rec.Status == target {
			// no-op, never re-applies stock
			out = &rec
			return nil
		}
		if err := ValidateTransition(domain.DocKindReceipt, rec.Status, target); err != nil {
			return err
		}
		if err := ReceiptGuard(&rec, target).Err(); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target, "updated_at": now}
		if target == domain.ReceiptStatusDone {
			updates["received_at"] = now
			if err := s.applyReceiptStock(tx, &rec); err != nil {
				return err
			}
		}
		if err := tx.Model(&domain.WmsReceipt{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			return err
		}
		rec.Status = target
		out = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applyReceiptStock(tx *gorm.DB, rec *domain.WmsReceipt) error {
	applied, err := movementsApplied(tx, domain.DocKindReceipt, rec.ID)
	if err != nil {
		return err
	}
	if applied {
		zap.L().Info("receipt stock already applied, skipping",
			zap.String("number", rec.Number))
		return nil
	}
	deltas := map[int64]int64{}
	for _, item := range rec.Items {
		deltas[item.ProductId] += item.QtyReceived
	}
	return applyDeltas(tx, domain.DocKindReceipt, rec.ID, rec.Number,
		aggregateDeltas(deltas), "receipt done")
}

// ------------------------------------------------------------------
// Deliveries
// ------------------------------------------------------------------

// CreateDelivery initializes a delivery in picked with a generated number
func (s *Service) CreateDelivery(ctx context.Context, del *domain.WmsDelivery) error {
	return s.createWithNumber(ctx, domain.DocKindDelivery, func(tx *gorm.DB, number string) error {
		del.ID = common.UUIDint64()
		del.Number = number
		del.Status = InitialStatus(domain.DocKindDelivery)
		del.CreatedAt = time.Now()
		del.UpdatedAt = time.Now()
		for i := range del.Items {
			if err := validateDeliveryItem(&del.Items[i]); err != nil {
				return err
			}
			del.Items[i].ID = common.UUIDint64()
			del.Items[i].DeliveryId = del.ID
			del.Items[i].Sort = i
		}
		return tx.Create(del).Error
	})
}

// GetDelivery loads a delivery with its ordered items
func (s *Service) GetDelivery(ctx context.Context, id int64) (*domain.WmsDelivery, error) {
	var del domain.WmsDelivery
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
		First(&del, id).Error
	if err != nil {
		return nil, err
	}
	return &del, nil
}

// validateDeliveryItem rejects inconsistent quantities outright. The
// packed-over-picked policy here is reject, not clamp: the client-side
// clamp is no substitute for server validation.
func validateDeliveryItem(item *domain.WmsDeliveryItem) error {
	if item.QtyPicked < 0 || item.QtyPacked < 0 {
		return &ValidationError{Message: "Quantities cannot be negative"}
	}
	if item.QtyPacked > item.QtyPicked {
		return &ValidationError{
			Message: fmt.Sprintf("Packed quantity %d exceeds picked quantity %d", item.QtyPacked, item.QtyPicked),
		}
	}
	if item.Price.IsNegative() {
		return &ValidationError{Message: "Price cannot be negative"}
	}
	return nil
}

// UpdateDeliveryItems replaces the delivery's line item set. Editing is
// locked once the delivery is validated.
func (s *Service) UpdateDeliveryItems(ctx context.Context, id int64, items []domain.WmsDeliveryItem) (*domain.WmsDelivery, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var del domain.WmsDelivery
		if err := tx.First(&del, id).Error; err != nil {
			return err
		}
		if del.IsTerminal() {
			return errors.Wrapf(ErrDocumentLocked, "delivery %s is validated", del.Number)
		}
		for i := range items {
			if err := validateDeliveryItem(&items[i]); err != nil {
				return err
			}
		}
		if err := tx.Where("delivery_id = ?", id).Delete(&domain.WmsDeliveryItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = common.UUIDint64()
			items[i].DeliveryId = id
			items[i].Sort = i
			items[i].CreatedAt = time.Now()
			items[i].UpdatedAt = time.Now()
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.WmsDelivery{}).Where("id = ?", id).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetDelivery(ctx, id)
}

// TransitionDelivery runs the guard and, if it passes, applies the new
// status. Validation applies the stock decrease in the same transaction,
// at most once per delivery lifetime.
func (s *Service) TransitionDelivery(ctx context.Context, id int64, target string) (*domain.WmsDelivery, error) {
	var out *domain.WmsDelivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var del domain.WmsDelivery
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
			First(&del, id).Error; err != nil {
			return err
		}
		if del.Status == target {
			out = &del
			return nil
		}
		if err := ValidateTransition(domain.DocKindDelivery, del.Status, target); err != nil {
			return err
		}
		if err := DeliveryGuard(&del, target).Err(); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target, "updated_at": now}
		if target == domain.DeliveryStatusValidated {
			if err := s.applyDeliveryStock(tx, &del); err != nil {
				return err
			}
		}
		if err := tx.Model(&domain.WmsDelivery{}).Where("id = ?", del.ID).Updates(updates).Error; err != nil {
			return err
		}
		del.Status = target
		out = &del
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applyDeliveryStock(tx *gorm.DB, del *domain.WmsDelivery) error {
	applied, err := movementsApplied(tx, domain.DocKindDelivery, del.ID)
	if err != nil {
		return err
	}
	if applied {
		zap.L().Info("delivery stock already applied, skipping",
			zap.String("number", del.Number))
		return nil
	}
	deltas := map[int64]int64{}
	for _, item := range del.Items {
		deltas[item.ProductId] -= item.QtyPacked
	}
	return applyDeltas(tx, domain.DocKindDelivery, del.ID, del.Number,
		aggregateDeltas(deltas), "delivery validated")
}

// ------------------------------------------------------------------
// Manufacturing orders
// ------------------------------------------------------------------

// CreateManufactureOrder initializes an order in draft with a generated number
func (s *Service) CreateManufactureOrder(ctx context.Context, mo *domain.WmsManufactureOrder) error {
	return s.createWithNumber(ctx, domain.DocKindManufacture, func(tx *gorm.DB, number string) error {
		mo.ID = common.UUIDint64()
		mo.Number = number
		mo.Status = InitialStatus(domain.DocKindManufacture)
		mo.CreatedAt = time.Now()
		mo.UpdatedAt = time.Now()
		for i := range mo.Items {
			if err := validateComponent(&mo.Items[i]); err != nil {
				return err
			}
			mo.Items[i].ID = common.UUIDint64()
			mo.Items[i].OrderId = mo.ID
			mo.Items[i].Sort = i
		}
		return tx.Create(mo).Error
	})
}

// GetManufactureOrder loads an order with its ordered components
func (s *Service) GetManufactureOrder(ctx context.Context, id int64) (*domain.WmsManufactureOrder, error) {
	var mo domain.WmsManufactureOrder
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
		First(&mo, id).Error
	if err != nil {
		return nil, err
	}
	return &mo, nil
}

func validateComponent(item *domain.WmsManufactureComponent) error {
	if item.Qty < 0 {
		return &ValidationError{Message: "Component quantity cannot be negative"}
	}
	if item.Price.IsNegative() {
		return &ValidationError{Message: "Price cannot be negative"}
	}
	return nil
}

// UpdateManufactureComponents replaces the order's component set.
// Editing is locked once the order is done.
func (s *Service) UpdateManufactureComponents(ctx context.Context, id int64, items []domain.WmsManufactureComponent) (*domain.WmsManufactureOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mo domain.WmsManufactureOrder
		if err := tx.First(&mo, id).Error; err != nil {
			return err
		}
		if mo.IsTerminal() {
			return errors.Wrapf(ErrDocumentLocked, "manufacturing order %s is done", mo.Number)
		}
		for i := range items {
			if err := validateComponent(&items[i]); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.WmsManufactureComponent{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = common.UUIDint64()
			items[i].OrderId = id
			items[i].Sort = i
			items[i].CreatedAt = time.Now()
			items[i].UpdatedAt = time.Now()
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.WmsManufactureOrder{}).Where("id = ?", id).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetManufactureOrder(ctx, id)
}

// TransitionManufactureOrder runs the guard and, if it passes, applies
// the new status. Completion consumes components and produces the
// finished product in the same transaction, at most once per order.
func (s *Service) TransitionManufactureOrder(ctx context.Context, id int64, target string) (*domain.WmsManufactureOrder, error) {
	var out *domain.WmsManufactureOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mo domain.WmsManufactureOrder
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
			First(&mo, id).Error; err != nil {
			return err
		}
		if mo.Status == target {
			out = &mo
			return nil
		}
		if err := ValidateTransition(domain.DocKindManufacture, mo.Status, target); err != nil {
			return err
		}
		if err := ManufactureGuard(&mo, target).Err(); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target, "updated_at": now}
		if target == domain.MfgStatusDone {
			updates["finished_at"] = now
			if err := s.applyManufactureStock(tx, &mo); err != nil {
				return err
			}
		}
		if err := tx.Model(&domain.WmsManufactureOrder{}).Where("id = ?", mo.ID).Updates(updates).Error; err != nil {
			return err
		}
		mo.Status = target
		out = &mo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applyManufactureStock(tx *gorm.DB, mo *domain.WmsManufactureOrder) error {
	applied, err := movementsApplied(tx, domain.DocKindManufacture, mo.ID)
	if err != nil {
		return err
	}
	if applied {
		zap.L().Info("manufacturing stock already applied, skipping",
			zap.String("number", mo.Number))
		return nil
	}
	// consume components first so a shortage aborts before producing
	deltas := map[int64]int64{}
	for _, item := range mo.Items {
		deltas[item.ProductId] -= item.Qty * mo.Qty
	}
	if err := applyDeltas(tx, domain.DocKindManufacture, mo.ID, mo.Number,
		aggregateDeltas(deltas), "component consumed"); err != nil {
		return err
	}
	if err := adjustStock(tx, mo.ProductId, mo.Qty); err != nil {
		return err
	}
	return recordMovement(tx, domain.DocKindManufacture, mo.ID, mo.Number,
		mo.ProductId, mo.Qty, "finished product")
}

// ------------------------------------------------------------------
// Manual adjustments
// ------------------------------------------------------------------

// AdjustProduct applies a manual stock correction with its own ledger
// row. delta may be negative; on-hand never goes below zero.
func (s *Service) AdjustProduct(ctx context.Context, productID, delta int64, reason, oprName string) error {
	if delta == 0 {
		return &ValidationError{Message: "Adjustment delta cannot be zero"}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := adjustStock(tx, productID, delta); err != nil {
			return err
		}
		movementID := common.UUIDint64()
		return tx.Create(&domain.WmsStockMovement{
			ID:        movementID,
			DocKind:   domain.DocKindAdjustment,
			DocId:     movementID,
			ProductId: productID,
			Delta:     delta,
			Reason:    reason,
			OprName:   oprName,
			CreatedAt: time.Now(),
		}).Error
	})
}
