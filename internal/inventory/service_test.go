package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/config"
	"github.com/threadline/warehouse-backend/pkg/db"
	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/types"
)

func newTestEnv(t *testing.T) (Service, *Repository, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:inv_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.Sku{},
		&models.InventoryTransaction{},
		&models.ProductionBatch{},
		&models.Order{},
		&models.OrderLine{},
		&models.WriteOffLog{},
		&models.RepackQueueItem{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	repo := NewRepository(client.DB())
	svc, err := NewService(repo, client, nil, nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, repo, client
}

func createTestSku(t *testing.T, client *db.Client, code string) *models.Sku {
	t.Helper()
	sku := &models.Sku{
		ID:        uuid.New(),
		Code:      code,
		StyleName: "Oversized Tee",
		Size:      "L",
		Color:     "Black",
		IsActive:  true,
	}
	if err := client.DB().Create(sku).Error; err != nil {
		t.Fatalf("creating sku: %v", err)
	}
	return sku
}

func staffActor() types.Actor {
	return types.Actor{UserID: uuid.New(), Email: "staff@example.com", Role: enums.RoleStaff}
}

func adminActor() types.Actor {
	return types.Actor{UserID: uuid.New(), Email: "admin@example.com", Role: enums.RoleAdmin}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, typed.Code(), err)
	}
}

func TestInwardOutwardBalanceIdentity(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-BLK-L")
	actor := staffActor()

	in, err := svc.Inward(ctx, actor, InwardInput{SkuID: sku.ID, Qty: 10, Reason: enums.ReasonReceived})
	if err != nil {
		t.Fatalf("inward: %v", err)
	}
	if in.NewBalance != 10 || in.AvailableBalance != 10 {
		t.Fatalf("expected balance 10/10, got %d/%d", in.NewBalance, in.AvailableBalance)
	}

	out, err := svc.Outward(ctx, actor, InwardInput{SkuID: sku.ID, Qty: 4, Reason: enums.ReasonOrderAllocation})
	if err != nil {
		t.Fatalf("outward: %v", err)
	}
	if out.NewBalance != 6 {
		t.Fatalf("expected balance 6, got %d", out.NewBalance)
	}

	bal, err := repo.ComputeBalance(ctx, sku.ID)
	if err != nil {
		t.Fatalf("compute balance: %v", err)
	}
	if bal.TotalInward != 10 || bal.TotalOutward != 4 {
		t.Fatalf("expected totals 10/4, got %d/%d", bal.TotalInward, bal.TotalOutward)
	}
	if bal.CurrentBalance != bal.TotalInward-bal.TotalOutward {
		t.Fatalf("balance identity broken: %d != %d - %d", bal.CurrentBalance, bal.TotalInward, bal.TotalOutward)
	}
	if bal.AvailableBalance != bal.CurrentBalance {
		t.Fatalf("available should mirror current, got %d vs %d", bal.AvailableBalance, bal.CurrentBalance)
	}
}

func TestOutwardInsufficientStock(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-BLK-M")
	actor := staffActor()

	if _, err := svc.Inward(ctx, actor, InwardInput{SkuID: sku.ID, Qty: 3, Reason: enums.ReasonReceived}); err != nil {
		t.Fatalf("inward: %v", err)
	}

	_, err := svc.Outward(ctx, actor, InwardInput{SkuID: sku.ID, Qty: 5, Reason: enums.ReasonOrderAllocation})
	assertCode(t, err, pkgerrors.CodeBadRequest)

	bal, err := repo.ComputeBalance(ctx, sku.ID)
	if err != nil {
		t.Fatalf("compute balance: %v", err)
	}
	if bal.CurrentBalance != 3 {
		t.Fatalf("balance should be unchanged at 3, got %d", bal.CurrentBalance)
	}
}

func TestQuickInwardAllOrNothing(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-WHT-S")
	actor := staffActor()

	missing := uuid.New()
	_, err := svc.QuickInward(ctx, actor, QuickInwardInput{
		Items: []QuickInwardItem{
			{SkuID: sku.ID, Qty: 5},
			{SkuID: missing, Qty: 2},
		},
		Reason: enums.ReasonReceived,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)

	typed := pkgerrors.As(err)
	if typed.Details() == nil {
		t.Fatalf("expected missing sku details on error")
	}

	rows, err := repo.ListTransactions(ctx, sku.ID, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows after failed batch, got %d", len(rows))
	}

	res, err := svc.QuickInward(ctx, actor, QuickInwardInput{
		Items:  []QuickInwardItem{{SkuID: sku.ID, Qty: 5}},
		Reason: enums.ReasonReceived,
	})
	if err != nil {
		t.Fatalf("quick inward: %v", err)
	}
	if res.TotalQty != 5 || len(res.Transactions) != 1 {
		t.Fatalf("unexpected batch result: %+v", res)
	}
}

func TestInstantInwardCompletesBatchAtBoundary(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-NVY-L")
	actor := staffActor()

	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      sku.ID,
		QtyPlanned: 10,
		BatchDate:  time.Now().AddDate(0, 0, -1),
		Status:     enums.BatchStatusPlanned,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	if _, err := svc.InstantInward(ctx, actor, sku.ID, 6, &batch.ID); err != nil {
		t.Fatalf("instant inward: %v", err)
	}
	got, err := repo.FindBatchByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if got.QtyCompleted != 6 || got.Status != enums.BatchStatusInProgress || got.CompletedAt != nil {
		t.Fatalf("expected in-progress batch at 6, got %+v", got)
	}

	if _, err := svc.InstantInward(ctx, actor, sku.ID, 4, &batch.ID); err != nil {
		t.Fatalf("instant inward: %v", err)
	}
	got, err = repo.FindBatchByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if got.QtyCompleted != 10 || got.Status != enums.BatchStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("expected completed batch at 10, got %+v", got)
	}
}

func TestInstantInwardRejectsForeignBatch(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-GRN-M")
	other := createTestSku(t, client, "TEE-GRN-S")
	actor := staffActor()

	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      other.ID,
		QtyPlanned: 5,
		BatchDate:  time.Now(),
		Status:     enums.BatchStatusPlanned,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	_, err := svc.InstantInward(ctx, actor, sku.ID, 1, &batch.ID)
	assertCode(t, err, pkgerrors.CodeBadRequest)
}

func TestInstantInwardBySkuCode(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-RED-XL")
	actor := staffActor()

	res, err := svc.InstantInwardBySkuCode(ctx, actor, sku.Code)
	if err != nil {
		t.Fatalf("scan inward: %v", err)
	}
	if res.Qty != 1 || res.NewBalance != 1 {
		t.Fatalf("expected single unit receipt, got %+v", res)
	}
	if res.SkuCode != sku.Code || res.ProductName != sku.StyleName || res.Size != sku.Size {
		t.Fatalf("scan result missing variant data: %+v", res)
	}

	_, err = svc.InstantInwardBySkuCode(ctx, actor, "NO-SUCH-CODE")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestEditInwardCompletionLinkedQtyBlocked(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-BLU-L")
	actor := staffActor()

	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      sku.ID,
		QtyPlanned: 20,
		BatchDate:  time.Now(),
		Status:     enums.BatchStatusPlanned,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	res, err := svc.InstantInward(ctx, actor, sku.ID, 5, &batch.ID)
	if err != nil {
		t.Fatalf("instant inward: %v", err)
	}

	newQty := 9
	_, err = svc.EditInward(ctx, actor, res.TransactionID, EditInwardInput{Qty: &newQty})
	assertCode(t, err, pkgerrors.CodeBadRequest)

	note := "recount from floor"
	edit, err := svc.EditInward(ctx, actor, res.TransactionID, EditInwardInput{Notes: &note})
	if err != nil {
		t.Fatalf("notes edit: %v", err)
	}
	if !edit.Updated {
		t.Fatalf("expected notes edit to report updated")
	}

	txn, err := repo.FindTransactionByID(ctx, res.TransactionID)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if txn.Quantity != 5 {
		t.Fatalf("quantity should be unchanged at 5, got %d", txn.Quantity)
	}
	if txn.Notes == nil || *txn.Notes != note {
		t.Fatalf("notes not persisted: %+v", txn.Notes)
	}
}

func TestDeleteInwardCompletedBatchRequiresForce(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-GRY-M")
	actor := staffActor()

	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      sku.ID,
		QtyPlanned: 3,
		BatchDate:  time.Now(),
		Status:     enums.BatchStatusPlanned,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	res, err := svc.InstantInward(ctx, actor, sku.ID, 3, &batch.ID)
	if err != nil {
		t.Fatalf("instant inward: %v", err)
	}

	_, err = svc.DeleteInward(ctx, actor, res.TransactionID, false)
	assertCode(t, err, pkgerrors.CodeBadRequest)

	del, err := svc.DeleteInward(ctx, actor, res.TransactionID, true)
	if err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	if !del.Deleted || del.NewBalance != 0 {
		t.Fatalf("unexpected delete result: %+v", del)
	}

	got, err := repo.FindBatchByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if got.QtyCompleted != 0 || got.Status != enums.BatchStatusPlanned || got.CompletedAt != nil {
		t.Fatalf("batch counter not reversed: %+v", got)
	}
}

func TestDeleteTransactionRequiresAdmin(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-YLW-S")

	res, err := svc.Inward(ctx, adminActor(), InwardInput{SkuID: sku.ID, Qty: 2, Reason: enums.ReasonReceived})
	if err != nil {
		t.Fatalf("inward: %v", err)
	}

	_, err = svc.DeleteTransaction(ctx, staffActor(), res.TransactionID, false)
	assertCode(t, err, pkgerrors.CodeForbidden)

	del, err := svc.DeleteTransaction(ctx, adminActor(), res.TransactionID, false)
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if !del.Deleted || del.NewBalance != 0 {
		t.Fatalf("unexpected delete result: %+v", del)
	}
}

func TestUndoTransactionOutsideWindow(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-PNK-L")
	actor := staffActor()

	old := &models.InventoryTransaction{
		ID:          uuid.New(),
		SkuID:       sku.ID,
		TxnType:     enums.TxnTypeInward,
		Quantity:    4,
		Reason:      enums.ReasonReceived,
		CreatedByID: actor.UserID,
		CreatedAt:   time.Now().Add(-25 * time.Hour),
	}
	if err := client.DB().Create(old).Error; err != nil {
		t.Fatalf("creating old transaction: %v", err)
	}

	_, err := svc.UndoTransaction(ctx, actor, old.ID)
	assertCode(t, err, pkgerrors.CodeBadRequest)

	if _, err := repo.FindTransactionByID(ctx, old.ID); err != nil {
		t.Fatalf("row should survive failed undo: %v", err)
	}

	fresh, err := svc.Inward(ctx, actor, InwardInput{SkuID: sku.ID, Qty: 1, Reason: enums.ReasonReceived})
	if err != nil {
		t.Fatalf("inward: %v", err)
	}
	undo, err := svc.UndoTransaction(ctx, actor, fresh.TransactionID)
	if err != nil {
		t.Fatalf("undo within window: %v", err)
	}
	if undo.NewBalance != 4 {
		t.Fatalf("expected balance 4 after undo, got %d", undo.NewBalance)
	}
}

func TestUndoInwardReversesBatchCounter(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-ORN-M")
	actor := staffActor()

	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      sku.ID,
		QtyPlanned: 10,
		BatchDate:  time.Now(),
		Status:     enums.BatchStatusPlanned,
	}
	if err := client.DB().Create(batch).Error; err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	res, err := svc.InstantInward(ctx, actor, sku.ID, 7, &batch.ID)
	if err != nil {
		t.Fatalf("instant inward: %v", err)
	}

	undo, err := svc.UndoInward(ctx, actor, sku.ID)
	if err != nil {
		t.Fatalf("undo inward: %v", err)
	}
	if undo.TransactionID != res.TransactionID || undo.NewBalance != 0 {
		t.Fatalf("unexpected undo result: %+v", undo)
	}

	got, err := repo.FindBatchByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if got.QtyCompleted != 0 || got.Status != enums.BatchStatusPlanned {
		t.Fatalf("batch not reversed: %+v", got)
	}
}

func TestAdjustBothDirections(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-PRP-S")
	actor := adminActor()

	up, err := svc.Adjust(ctx, actor, AdjustInput{SkuID: sku.ID, AdjustedQuantity: 5, Reason: enums.ReasonAdjustment})
	if err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	if up.AdjustmentType != "increase" || up.NewBalance != 5 {
		t.Fatalf("unexpected increase result: %+v", up)
	}

	down, err := svc.Adjust(ctx, actor, AdjustInput{SkuID: sku.ID, AdjustedQuantity: -3, Reason: enums.ReasonAdjustment})
	if err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	if down.AdjustmentType != "decrease" || down.NewBalance != 2 {
		t.Fatalf("unexpected decrease result: %+v", down)
	}

	_, err = svc.Adjust(ctx, actor, AdjustInput{SkuID: sku.ID, AdjustedQuantity: -10, Reason: enums.ReasonAdjustment})
	assertCode(t, err, pkgerrors.CodeBadRequest)

	_, err = svc.Adjust(ctx, actor, AdjustInput{SkuID: sku.ID, AdjustedQuantity: 0, Reason: enums.ReasonAdjustment})
	assertCode(t, err, pkgerrors.CodeBadRequest)
}

func TestAdjustWritesAuditHeader(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-TAN-M")
	actor := adminActor()

	why := "cycle count correction"
	res, err := svc.Adjust(ctx, actor, AdjustInput{SkuID: sku.ID, AdjustedQuantity: 2, Reason: enums.ReasonAdjustment, Notes: &why})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}

	txn, err := repo.FindTransactionByID(ctx, res.TransactionID)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if txn.Notes == nil {
		t.Fatalf("expected audit notes on adjustment")
	}
	for _, want := range []string{actor.Email, string(actor.Role), why} {
		if !strings.Contains(*txn.Notes, want) {
			t.Fatalf("audit notes missing %q: %s", want, *txn.Notes)
		}
	}
}

func TestRTOInwardLineIdempotent(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-AQU-L")
	actor := staffActor()

	order := &models.Order{ID: uuid.New(), OrderNumber: "TL-1001"}
	if err := client.DB().Create(order).Error; err != nil {
		t.Fatalf("creating order: %v", err)
	}
	initiated := time.Now().Add(-48 * time.Hour)
	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        order.ID,
		SkuID:          sku.ID,
		Quantity:       2,
		TrackingStatus: enums.TrackingRTODelivered,
		RTOInitiatedAt: &initiated,
	}
	if err := client.DB().Create(line).Error; err != nil {
		t.Fatalf("creating order line: %v", err)
	}

	first, err := svc.RTOInwardLine(ctx, actor, line.ID, enums.RTOConditionGood, nil)
	if err != nil {
		t.Fatalf("first receipt: %v", err)
	}
	if first.Qty != 2 || first.NewBalance != 2 {
		t.Fatalf("unexpected first receipt: %+v", first)
	}

	second, err := svc.RTOInwardLine(ctx, actor, line.ID, enums.RTOConditionGood, nil)
	if err != nil {
		t.Fatalf("replay receipt: %v", err)
	}
	if second.TransactionID != first.TransactionID {
		t.Fatalf("replay should return original transaction, got %s vs %s", second.TransactionID, first.TransactionID)
	}
	if second.NewBalance != 2 {
		t.Fatalf("replay must not change balance, got %d", second.NewBalance)
	}

	rows, err := repo.ListTransactions(ctx, sku.ID, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single ledger row, got %d", len(rows))
	}
}

func TestRTOInwardLineRequiresInitiation(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-LIM-S")

	order := &models.Order{ID: uuid.New(), OrderNumber: "TL-1002"}
	if err := client.DB().Create(order).Error; err != nil {
		t.Fatalf("creating order: %v", err)
	}
	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        order.ID,
		SkuID:          sku.ID,
		Quantity:       1,
		TrackingStatus: enums.TrackingDelivered,
	}
	if err := client.DB().Create(line).Error; err != nil {
		t.Fatalf("creating order line: %v", err)
	}

	_, err := svc.RTOInwardLine(ctx, staffActor(), line.ID, enums.RTOConditionGood, nil)
	assertCode(t, err, pkgerrors.CodeBadRequest)
}

func TestRTOInwardLineWrittenOffConflict(t *testing.T) {
	svc, repo, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-RED-M")

	order := &models.Order{ID: uuid.New(), OrderNumber: "TL-1003"}
	if err := client.DB().Create(order).Error; err != nil {
		t.Fatalf("creating order: %v", err)
	}
	// A damaged line whose receipt row was removed by the write-off path:
	// condition set, no surviving transaction.
	initiated := time.Now().Add(-48 * time.Hour)
	condition := enums.RTOConditionDamaged
	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        order.ID,
		SkuID:          sku.ID,
		Quantity:       2,
		TrackingStatus: enums.TrackingRTODelivered,
		RTOInitiatedAt: &initiated,
		RTOCondition:   &condition,
	}
	if err := client.DB().Create(line).Error; err != nil {
		t.Fatalf("creating order line: %v", err)
	}

	_, err := svc.RTOInwardLine(ctx, staffActor(), line.ID, enums.RTOConditionGood, nil)
	assertCode(t, err, pkgerrors.CodeConflict)

	rows, err := repo.ListTransactions(ctx, sku.ID, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("written-off unit must not re-enter stock, found %d rows", len(rows))
	}

	got, err := repo.FindOrderLineByID(ctx, line.ID)
	if err != nil {
		t.Fatalf("find order line: %v", err)
	}
	if got.RTOCondition == nil || *got.RTOCondition != enums.RTOConditionDamaged {
		t.Fatalf("condition must stay damaged, got %v", got.RTOCondition)
	}
}

func TestGetSkuByCode(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()
	sku := createTestSku(t, client, "TEE-NVY-XL")

	got, err := svc.GetSkuByCode(ctx, "TEE-NVY-XL")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != sku.ID || got.StyleName != sku.StyleName || !got.IsActive {
		t.Fatalf("unexpected sku payload: %+v", got)
	}

	_, err = svc.GetSkuByCode(ctx, "TEE-DOES-NOT-EXIST")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestInactiveSkuRejected(t *testing.T) {
	svc, _, client := newTestEnv(t)
	ctx := context.Background()

	sku := &models.Sku{ID: uuid.New(), Code: "TEE-OLD-M", StyleName: "Retired Tee", Size: "M", Color: "Grey", IsActive: false}
	if err := client.DB().Create(sku).Error; err != nil {
		t.Fatalf("creating sku: %v", err)
	}

	_, err := svc.Inward(ctx, staffActor(), InwardInput{SkuID: sku.ID, Qty: 1, Reason: enums.ReasonReceived})
	assertCode(t, err, pkgerrors.CodeBadRequest)
}
