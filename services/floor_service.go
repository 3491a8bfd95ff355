package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kendall-kelly/restaurant-floor-api/config"
	"github.com/kendall-kelly/restaurant-floor-api/events"
	"github.com/kendall-kelly/restaurant-floor-api/models"
	"github.com/kendall-kelly/restaurant-floor-api/printing"
)

// OrderLine is one requested dish and quantity
type OrderLine struct {
	DishID   uint `json:"dish_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput is what a waiter submits to place an order
type CreateOrderInput struct {
	TableID uint
	Items   []OrderLine
}

// OrderResult is a placed order and how its kitchen tickets printed
type OrderResult struct {
	Order *models.Order           `json:"order"`
	Print printing.DispatchReport `json:"print"`
}

// ReceiptResult describes one consolidated receipt print
type ReceiptResult struct {
	Printed    bool   `json:"printed"`
	Endpoint   string `json:"endpoint"`
	ArchiveKey string `json:"archive_key,omitempty"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	Err        error  `json:"-"`
}

// CloseResult is a closed order and its receipt
type CloseResult struct {
	Order         *models.Order `json:"order"`
	TableReleased bool          `json:"table_released"`
	Receipt       ReceiptResult `json:"receipt"`
}

// BillResult is the outcome of settling a whole table
type BillResult struct {
	TableID   uint           `json:"table_id"`
	TotalBill int64          `json:"total_bill"`
	Orders    []models.Order `json:"orders"`
	Receipt   ReceiptResult  `json:"receipt"`
}

// TableStatus is the payload of table_status_changed
type TableStatus struct {
	TableID  uint  `json:"table_id"`
	IsActive bool  `json:"is_active"`
	WorkerID *uint `json:"worker_id"`
}

// DishQuantity is the payload of dish_quantity_updated
type DishQuantity struct {
	DishID   uint   `json:"dish_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// BillGenerated is the payload of bill_generated
type BillGenerated struct {
	TableID   uint           `json:"table_id"`
	TotalBill int64          `json:"total_bill"`
	Orders    []models.Order `json:"orders"`
}

// FloorOptions carries the collaborators of a FloorService
type FloorOptions struct {
	DB               *gorm.DB
	Printer          printing.Printer
	Endpoints        map[string]config.PrinterEndpoint
	PrintConcurrency int
	ReceiptPrinter   config.PrinterEndpoint
	ReceiptTitle     string
	Publisher        events.Publisher
	Archive          ReceiptArchive // optional
	StrictPrinting   bool
}

// FloorService reserves stock, places and settles orders, and drives the printers.
// All coordination between concurrent requests happens in the database.
type FloorService struct {
	db             *gorm.DB
	dispatcher     *printing.Dispatcher
	printer        printing.Printer
	receiptPrinter config.PrinterEndpoint
	receiptTitle   string
	publisher      events.Publisher
	archive        ReceiptArchive
	strictPrinting bool
	now            func() time.Time
}

var floorServiceInstance *FloorService

// NewFloorService creates a floor service
func NewFloorService(opts FloorOptions) *FloorService {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NewLogPublisher(nil)
	}
	return &FloorService{
		db:             opts.DB,
		dispatcher:     printing.NewDispatcher(opts.Printer, opts.Endpoints, opts.PrintConcurrency),
		printer:        opts.Printer,
		receiptPrinter: opts.ReceiptPrinter,
		receiptTitle:   opts.ReceiptTitle,
		publisher:      publisher,
		archive:        opts.Archive,
		strictPrinting: opts.StrictPrinting,
		now:            time.Now,
	}
}

// InitFloorService creates the floor service used by the controllers
func InitFloorService(opts FloorOptions) *FloorService {
	floorServiceInstance = NewFloorService(opts)
	return floorServiceInstance
}

// GetFloorService returns the initialized floor service instance
func GetFloorService() *FloorService {
	return floorServiceInstance
}

// SetFloorService sets the floor service instance (primarily for testing)
func SetFloorService(service *FloorService) {
	floorServiceInstance = service
}

// WorkerBySubject resolves an identity subject to a worker
func (s *FloorService) WorkerBySubject(ctx context.Context, subject string) (*models.Worker, error) {
	var worker models.Worker
	err := s.db.WithContext(ctx).Where("subject = ?", subject).First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("no worker registered for this identity")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	return &worker, nil
}

// CreateOrder reserves stock for every line, records the order and assigns the
// table to the waiter, all in one transaction, then prints kitchen tickets.
// Either every line is reserved or nothing changes.
func (s *FloorService) CreateOrder(ctx context.Context, actor *models.Worker, in CreateOrderInput) (*OrderResult, error) {
	if err := Authorize(actor, OpCreateOrder); err != nil {
		return nil, err
	}
	if in.TableID == 0 {
		return nil, invalid("table_id is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("an order needs at least one item")
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, invalid("quantity for dish %d must be positive", line.DishID)
		}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, in.TableID)
		if err != nil {
			return err
		}
		if table.HeldByOther(actor.ID) {
			return ownershipConflict(tx, table.ID)
		}

		order = models.Order{TableID: table.ID, WorkerID: actor.ID, Status: models.OrderStatusOpen}
		order.Items = make([]models.OrderItem, len(in.Items))
		// dish rows are always locked in ascending id order so two orders
		// naming the same dishes in opposite order cannot deadlock
		for _, i := range reservationOrder(in.Items) {
			item, err := reserve(tx, in.Items[i])
			if err != nil {
				return err
			}
			order.Items[i] = item
			order.TotalPrice += item.LineTotal()
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		res := tx.Model(&models.Table{}).
			Where("id = ? AND (worker_id IS NULL OR worker_id = ?)", table.ID, actor.ID).
			Updates(map[string]any{"is_active": true, "worker_id": actor.ID})
		if res.Error != nil {
			return fmt.Errorf("failed to assign table: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ownershipConflict(tx, table.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("order created",
		slog.String("action", "create_order"),
		slog.Uint64("order_id", uint64(created.ID)),
		slog.Uint64("table_id", uint64(created.TableID)),
		slog.Uint64("worker_id", uint64(actor.ID)),
		slog.Int64("total", created.TotalPrice))

	events.Emit(ctx, s.publisher, events.New(events.TypeOrderCreated, created))
	workerID := actor.ID
	events.Emit(ctx, s.publisher, events.New(events.TypeTableStatusChanged, TableStatus{
		TableID: created.TableID, IsActive: true, WorkerID: &workerID,
	}))

	ticket := printing.Ticket{OrderID: created.ID, WaiterName: actor.Fullname}
	if created.Table != nil {
		ticket.TableNumber = created.Table.Number
	}
	for _, item := range created.Items {
		ticket.Items = append(ticket.Items, printing.TicketItem{Name: item.Name, Quantity: item.Quantity, Category: item.Category})
	}
	report := s.dispatcher.Dispatch(ctx, ticket)

	result := &OrderResult{Order: created, Print: report}
	if failed := report.Failed(); len(failed) > 0 && s.strictPrinting {
		return result, &ServiceError{
			Code:    CodePrintFailed,
			Message: fmt.Sprintf("order %d was placed but %d kitchen ticket(s) did not print", created.ID, len(failed)),
			Err:     report.Err(),
		}
	}
	return result, nil
}

// CloseOrder moves an open order to closed and prints its receipt. The table is
// released when no other order on it is still open.
func (s *FloorService) CloseOrder(ctx context.Context, actor *models.Worker, orderID uint) (*CloseResult, error) {
	if err := Authorize(actor, OpCloseOrder); err != nil {
		return nil, err
	}

	released := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("order %d not found", orderID)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		// sibling closes on the same table serialize here
		if _, err := lockTable(tx, order.TableID); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusOpen).
			Updates(map[string]any{
				"status":       models.OrderStatusClosed,
				"closed_by_id": actor.ID,
				"closed_at":    s.now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(CodeInvalidState, "order %d is already closed", order.ID)
		}

		var remaining int64
		if err := tx.Model(&models.Order{}).
			Where("table_id = ? AND status = ?", order.TableID, models.OrderStatusOpen).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count open orders: %w", err)
		}
		if remaining == 0 {
			if err := releaseTable(tx, order.TableID); err != nil {
				return err
			}
			released = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	closed, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	slog.Info("order closed",
		slog.String("action", "close_order"),
		slog.Uint64("order_id", uint64(closed.ID)),
		slog.Uint64("table_id", uint64(closed.TableID)),
		slog.Uint64("worker_id", uint64(actor.ID)),
		slog.Bool("table_released", released))

	receipt := s.printReceipt(ctx, "order", closed.ID, receiptLines(closed.Items), closed.TotalPrice)
	if receipt.ArchiveKey != "" {
		s.saveReceiptKey(ctx, receipt.ArchiveKey, closed.ID)
		key := receipt.ArchiveKey
		closed.ReceiptKey = &key
	}

	// listeners see order_closed only after the receipt is out
	events.Emit(ctx, s.publisher, events.New(events.TypeOrderClosed, closed))
	if released {
		events.Emit(ctx, s.publisher, events.New(events.TypeTableStatusChanged, TableStatus{TableID: closed.TableID}))
	}

	result := &CloseResult{Order: closed, TableReleased: released, Receipt: receipt}
	if receipt.Err != nil && s.strictPrinting {
		return result, &ServiceError{
			Code:    CodePrintFailed,
			Message: fmt.Sprintf("order %d was closed but its receipt did not print", closed.ID),
			Err:     receipt.Err,
		}
	}
	return result, nil
}

// SettleTable closes every open order on a table as one bill and frees the table
func (s *FloorService) SettleTable(ctx context.Context, actor *models.Worker, tableID uint) (*BillResult, error) {
	if err := Authorize(actor, OpSettleTable); err != nil {
		return nil, err
	}

	var orders []models.Order
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableID)
		if err != nil {
			return err
		}

		if err := tx.Preload("Items", orderByID).
			Where("table_id = ? AND status = ?", table.ID, models.OrderStatusOpen).
			Order("id").
			Find(&orders).Error; err != nil {
			return fmt.Errorf("failed to load open orders: %w", err)
		}
		if len(orders) == 0 {
			return notFound("table %d has no open orders", table.Number)
		}

		ids := orderIDs(orders)
		res := tx.Model(&models.Order{}).
			Where("id IN ? AND status = ?", ids, models.OrderStatusOpen).
			Updates(map[string]any{
				"status":       models.OrderStatusClosed,
				"closed_by_id": actor.ID,
				"closed_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close orders: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return newError(CodeInvalidState, "orders on table %d changed during settlement", table.Number)
		}
		return releaseTable(tx, table.ID)
	})
	if err != nil {
		return nil, err
	}

	var total int64
	var items []models.OrderItem
	closedBy := actor.ID
	for i := range orders {
		orders[i].Status = models.OrderStatusClosed
		orders[i].ClosedByID = &closedBy
		orders[i].ClosedAt = &now
		total += orders[i].TotalPrice
		items = append(items, orders[i].Items...)
	}

	slog.Info("table settled",
		slog.String("action", "settle_table"),
		slog.Uint64("table_id", uint64(tableID)),
		slog.Int("orders", len(orders)),
		slog.Int64("total", total))

	receipt := s.printReceipt(ctx, "bill", tableID, receiptLines(items), total)
	if receipt.ArchiveKey != "" {
		s.saveReceiptKey(ctx, receipt.ArchiveKey, orderIDs(orders)...)
		for i := range orders {
			key := receipt.ArchiveKey
			orders[i].ReceiptKey = &key
		}
	}

	events.Emit(ctx, s.publisher, events.New(events.TypeTableStatusChanged, TableStatus{TableID: tableID}))
	events.Emit(ctx, s.publisher, events.New(events.TypeBillGenerated, BillGenerated{
		TableID: tableID, TotalBill: total, Orders: orders,
	}))

	result := &BillResult{TableID: tableID, TotalBill: total, Orders: orders, Receipt: receipt}
	if receipt.Err != nil && s.strictPrinting {
		return result, &ServiceError{
			Code:    CodePrintFailed,
			Message: fmt.Sprintf("table %d was settled but the bill did not print", tableID),
			Err:     receipt.Err,
		}
	}
	return result, nil
}

// SetDishQuantity sets a dish's stock on hand
func (s *FloorService) SetDishQuantity(ctx context.Context, actor *models.Worker, dishID uint, quantity int) (*models.Dish, error) {
	if err := Authorize(actor, OpRestockDish); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, invalid("quantity must not be negative")
	}

	db := s.db.WithContext(ctx)
	var dish models.Dish
	if err := db.First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("dish %d not found", dishID)
		}
		return nil, fmt.Errorf("failed to load dish: %w", err)
	}
	if err := db.Model(&dish).Update("quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update dish quantity: %w", err)
	}
	dish.Quantity = quantity

	slog.Info("dish restocked",
		slog.String("action", "restock_dish"),
		slog.Uint64("dish_id", uint64(dish.ID)),
		slog.Int("quantity", quantity))

	events.Emit(ctx, s.publisher, events.New(events.TypeDishQuantityUpdated, DishQuantity{
		DishID: dish.ID, Name: dish.Name, Quantity: dish.Quantity,
	}))
	return &dish, nil
}

// ListDishes returns the menu with current stock
func (s *FloorService) ListDishes(ctx context.Context, actor *models.Worker) ([]models.Dish, error) {
	if err := Authorize(actor, OpListDishes); err != nil {
		return nil, err
	}
	var dishes []models.Dish
	if err := s.db.WithContext(ctx).Order("category, name").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

// ListOpenOrders returns every open order, oldest first
func (s *FloorService) ListOpenOrders(ctx context.Context, actor *models.Worker) ([]models.Order, error) {
	if err := Authorize(actor, OpListOpenOrders); err != nil {
		return nil, err
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).Preload("Table").Preload("Worker").
		Where("status = ?", models.OrderStatusOpen).
		Order("created_at, id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}
	return orders, nil
}

// ListTableOrders returns the open orders on a table served by the calling waiter
func (s *FloorService) ListTableOrders(ctx context.Context, actor *models.Worker, tableID uint) ([]models.Order, error) {
	if err := Authorize(actor, OpListTableOrders); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table %d not found", tableID)
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}

	var orders []models.Order
	if err := db.Preload("Items", orderByID).
		Where("table_id = ? AND status = ?", table.ID, models.OrderStatusOpen).
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list table orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, notFound("table %d has no open orders", table.Number)
	}
	for _, order := range orders {
		if order.WorkerID != actor.ID {
			return nil, newError(CodeForbidden, "table %d is served by another waiter", table.Number)
		}
	}
	return orders, nil
}

// GetOrder returns an order with a link to its archived receipt
func (s *FloorService) GetOrder(ctx context.Context, actor *models.Worker, orderID uint) (*models.Order, error) {
	if err := Authorize(actor, OpViewOrder); err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ReceiptKey != nil && s.archive != nil {
		url, err := s.archive.PresignedURL(ctx, *order.ReceiptKey)
		if err != nil {
			slog.Warn("failed to generate receipt url",
				slog.Uint64("order_id", uint64(order.ID)),
				slog.Any("error", err))
		} else if url != "" {
			order.ReceiptURL = &url
		}
	}
	return order, nil
}

// PrintReceipt prints a consolidated receipt for arbitrary dishes without
// touching orders or stock. A zero total is computed from current prices.
func (s *FloorService) PrintReceipt(ctx context.Context, actor *models.Worker, items []OrderLine, total int64) (*ReceiptResult, error) {
	if err := Authorize(actor, OpPrintReceipt); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, invalid("a receipt needs at least one item")
	}
	if total < 0 {
		return nil, invalid("total must not be negative")
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, invalid("quantity for dish %d must be positive", item.DishID)
		}
		ids = append(ids, item.DishID)
	}

	var dishes []models.Dish
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to load dishes: %w", err)
	}
	byID := make(map[uint]models.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	lines := make([]printing.ReceiptLine, 0, len(items))
	var computed int64
	for _, item := range items {
		dish, ok := byID[item.DishID]
		if !ok {
			return nil, notFound("dish %d not found", item.DishID)
		}
		line := printing.ReceiptLine{DishID: dish.ID, Name: dish.Name, UnitPrice: dish.Price, Quantity: item.Quantity}
		computed += line.Amount()
		lines = append(lines, line)
	}
	if total == 0 {
		total = computed
	}

	receipt := s.printReceipt(ctx, "adhoc", actor.ID, lines, total)
	if receipt.Err != nil && s.strictPrinting {
		return &receipt, &ServiceError{Code: CodePrintFailed, Message: "receipt did not print", Err: receipt.Err}
	}
	return &receipt, nil
}

// printReceipt prints a consolidated receipt on the receipt printer and archives its text
func (s *FloorService) printReceipt(ctx context.Context, kind string, id uint, lines []printing.ReceiptLine, total int64) ReceiptResult {
	at := s.now()
	text := printing.FormatReceipt(lines, total, at)
	result := ReceiptResult{Endpoint: s.receiptPrinter.String()}

	err := s.printer.Print(ctx, s.receiptPrinter, printing.ReceiptDocument(s.receiptTitle, text))
	if err != nil {
		var pe *printing.PrinterError
		if errors.As(err, &pe) && pe.Category == "" {
			pe.Category = "receipt"
		}
		result.Err = err
		result.Code = printing.ErrorCode(err)
		result.Error = err.Error()
		slog.Error("receipt print failed",
			slog.String("action", "print_receipt"),
			slog.String("kind", kind),
			slog.Uint64("id", uint64(id)),
			slog.String("endpoint", result.Endpoint),
			slog.Any("error", err))
	} else {
		result.Printed = true
		slog.Info("receipt printed",
			slog.String("action", "print_receipt"),
			slog.String("kind", kind),
			slog.Uint64("id", uint64(id)),
			slog.String("endpoint", result.Endpoint))
	}

	if s.archive != nil {
		key := ReceiptKey(kind, id, at)
		if err := s.archive.Store(ctx, key, text); err != nil {
			slog.Warn("failed to archive receipt", slog.String("key", key), slog.Any("error", err))
		} else {
			result.ArchiveKey = key
		}
	}
	return result
}

func (s *FloorService) saveReceiptKey(ctx context.Context, key string, orderIDs ...uint) {
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Update("receipt_key", key).Error
	if err != nil {
		slog.Warn("failed to save receipt key", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *FloorService) loadOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).Preload("Table").Preload("Worker").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("order %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// lockTable loads a table and holds its row lock until the transaction ends
func lockTable(tx *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("table %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	return &table, nil
}

func releaseTable(tx *gorm.DB, id uint) error {
	err := tx.Model(&models.Table{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "worker_id": nil}).Error
	if err != nil {
		return fmt.Errorf("failed to release table: %w", err)
	}
	return nil
}

// reserve takes quantity units of a dish out of stock with a conditional decrement
func reserve(tx *gorm.DB, line OrderLine) (models.OrderItem, error) {
	var dish models.Dish
	if err := tx.First(&dish, line.DishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OrderItem{}, notFound("dish %d not found", line.DishID)
		}
		return models.OrderItem{}, fmt.Errorf("failed to load dish: %w", err)
	}
	if dish.Quantity < line.Quantity {
		return models.OrderItem{}, insufficientStock(dish, line.Quantity)
	}

	res := tx.Model(&models.Dish{}).
		Where("id = ? AND quantity >= ?", dish.ID, line.Quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity))
	if res.Error != nil {
		return models.OrderItem{}, fmt.Errorf("failed to reserve dish %d: %w", dish.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// stock moved between the read and the decrement
		if err := tx.First(&dish, dish.ID).Error; err != nil {
			return models.OrderItem{}, fmt.Errorf("failed to load dish: %w", err)
		}
		return models.OrderItem{}, insufficientStock(dish, line.Quantity)
	}

	return models.OrderItem{
		DishID:    dish.ID,
		Name:      dish.Name,
		Quantity:  line.Quantity,
		UnitPrice: dish.Price,
		Category:  dish.Category,
	}, nil
}

// reservationOrder returns the indexes of lines sorted by dish id. Lines for
// the same dish keep their request order.
func reservationOrder(lines []OrderLine) []int {
	idx := make([]int, len(lines))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lines[idx[a]].DishID < lines[idx[b]].DishID
	})
	return idx
}

func insufficientStock(dish models.Dish, requested int) error {
	return newError(CodeInsufficientStock, "not enough %s: %d left, %d requested", dish.Name, dish.Quantity, requested)
}

func ownershipConflict(tx *gorm.DB, tableID uint) error {
	var table models.Table
	if err := tx.Preload("Worker").First(&table, tableID).Error; err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}
	holder := "another worker"
	if table.Worker != nil {
		holder = table.Worker.Fullname
	}
	return newError(CodeTableOwnershipConflict, "table %d is assigned to %s", table.Number, holder)
}

func receiptLines(items []models.OrderItem) []printing.ReceiptLine {
	lines := make([]printing.ReceiptLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, printing.ReceiptLine{
			DishID:    item.DishID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func orderIDs(orders []models.Order) []uint {
	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
