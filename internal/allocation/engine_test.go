package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/pkg/config"
	"github.com/threadline/warehouse-backend/pkg/db"
	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/types"
)

type testEnv struct {
	svc    Service
	ledger *inventory.Repository
	client *db.Client
	actor  types.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:alloc_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.Sku{},
		&models.InventoryTransaction{},
		&models.ProductionBatch{},
		&models.Order{},
		&models.OrderLine{},
		&models.WriteOffLog{},
		&models.RepackQueueItem{},
		&models.User{},
	))

	ledger := inventory.NewRepository(client.DB())
	svc, err := NewService(NewRepository(client.DB()), ledger, client, nil, nil, nil, nil)
	require.NoError(t, err)

	return &testEnv{
		svc:    svc,
		ledger: ledger,
		client: client,
		actor:  types.Actor{UserID: uuid.New(), Email: "floor@example.com", Role: enums.RoleStaff},
	}
}

func (e *testEnv) createSku(t *testing.T, code string) *models.Sku {
	t.Helper()
	sku := &models.Sku{ID: uuid.New(), Code: code, StyleName: "Boxy Tee", Size: "M", Color: "Sand", IsActive: true}
	require.NoError(t, e.client.DB().Create(sku).Error)
	return sku
}

func (e *testEnv) createReceipt(t *testing.T, skuID uuid.UUID, qty int) *models.InventoryTransaction {
	t.Helper()
	txn := &models.InventoryTransaction{
		ID:          uuid.New(),
		SkuID:       skuID,
		TxnType:     enums.TxnTypeInward,
		Quantity:    qty,
		Reason:      enums.ReasonReceived,
		CreatedByID: e.actor.UserID,
	}
	require.NoError(t, e.client.DB().Create(txn).Error)
	return txn
}

func (e *testEnv) createBatch(t *testing.T, skuID uuid.UUID, planned int, date time.Time) *models.ProductionBatch {
	t.Helper()
	batch := &models.ProductionBatch{
		ID:         uuid.New(),
		SkuID:      skuID,
		QtyPlanned: planned,
		BatchDate:  date,
		Status:     enums.BatchStatusPlanned,
	}
	require.NoError(t, e.client.DB().Create(batch).Error)
	return batch
}

func (e *testEnv) createRTOLine(t *testing.T, skuID uuid.UUID, orderNumber string, qty int, tracking enums.TrackingStatus) *models.OrderLine {
	t.Helper()
	order := &models.Order{ID: uuid.New(), OrderNumber: orderNumber}
	require.NoError(t, e.client.DB().Create(order).Error)
	initiated := time.Now().Add(-72 * time.Hour)
	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        order.ID,
		SkuID:          skuID,
		Quantity:       qty,
		TrackingStatus: tracking,
		RTOInitiatedAt: &initiated,
	}
	require.NoError(t, e.client.DB().Create(line).Error)
	return line
}

func requireCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, want, typed.Code())
}

func TestAllocateToProduction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-SND-M")
	txn := env.createReceipt(t, sku.ID, 8)
	batch := env.createBatch(t, sku.ID, 10, time.Now().AddDate(0, 0, -2))

	res, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
		AllocationID:  &batch.ID,
	})
	require.NoError(t, err)
	require.Equal(t, enums.AllocationProduction, res.Type)
	require.NotNil(t, res.ReferenceID)
	require.Equal(t, batch.ID, *res.ReferenceID)
	require.Equal(t, 8, res.NewBalance)

	got, err := env.ledger.FindBatchByID(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, 8, got.QtyCompleted)
	require.Equal(t, enums.BatchStatusInProgress, got.Status)

	updated, err := env.ledger.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReasonProduction, updated.Reason)
	require.NotNil(t, updated.ReferenceID)
}

func TestReallocateReversesPreviousTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-SND-L")
	txn := env.createReceipt(t, sku.ID, 5)
	batch := env.createBatch(t, sku.ID, 5, time.Now().AddDate(0, 0, -1))
	line := env.createRTOLine(t, sku.ID, "TL-2001", 5, enums.TrackingRTODelivered)

	_, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
		AllocationID:  &batch.ID,
	})
	require.NoError(t, err)

	got, err := env.ledger.FindBatchByID(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BatchStatusCompleted, got.Status)

	res, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationRTO,
		AllocationID:  &line.ID,
	})
	require.NoError(t, err)
	require.Equal(t, enums.AllocationRTO, res.Type)
	require.NotNil(t, res.Condition)
	require.Equal(t, enums.RTOConditionGood, *res.Condition)

	got, err = env.ledger.FindBatchByID(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.QtyCompleted)
	require.Equal(t, enums.BatchStatusPlanned, got.Status)
	require.Nil(t, got.CompletedAt)

	updated, err := env.ledger.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReasonRTOReceived, updated.Reason)
	require.NotNil(t, updated.ReferenceID)
	require.Equal(t, line.ID, *updated.ReferenceID)
	require.NotNil(t, updated.Notes)
	require.Contains(t, *updated.Notes, "TL-2001")

	gotLine, err := env.ledger.FindOrderLineByID(ctx, line.ID)
	require.NoError(t, err)
	require.NotNil(t, gotLine.RTOCondition)
	require.Equal(t, enums.RTOConditionGood, *gotLine.RTOCondition)
	require.NotNil(t, gotLine.RTOReceiptTxnID)
	require.Equal(t, txn.ID, *gotLine.RTOReceiptTxnID)
}

func TestAllocateDamagedWritesOff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-CLY-S")
	txn := env.createReceipt(t, sku.ID, 1)
	line := env.createRTOLine(t, sku.ID, "TL-2002", 1, enums.TrackingRTODelivered)

	cond := enums.RTOConditionDamaged
	res, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationRTO,
		AllocationID:  &line.ID,
		RTOCondition:  &cond,
	})
	require.NoError(t, err)
	require.True(t, res.WrittenOff)
	require.Nil(t, res.ReferenceID)
	require.Equal(t, 0, res.NewBalance)

	_, err = env.ledger.FindTransactionByID(ctx, txn.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var writeOffs []models.WriteOffLog
	require.NoError(t, env.client.DB().Where("sku_id = ?", sku.ID).Find(&writeOffs).Error)
	require.Len(t, writeOffs, 1)
	require.Equal(t, "order_line", writeOffs[0].SourceType)
	require.NotNil(t, writeOffs[0].SourceID)
	require.Equal(t, line.ID, *writeOffs[0].SourceID)

	gotSku, err := env.ledger.FindSkuByID(ctx, sku.ID)
	require.NoError(t, err)
	require.Equal(t, 1, gotSku.WriteOffCount)

	gotLine, err := env.ledger.FindOrderLineByID(ctx, line.ID)
	require.NoError(t, err)
	require.NotNil(t, gotLine.RTOCondition)
	require.Equal(t, enums.RTOConditionDamaged, *gotLine.RTOCondition)
	require.Nil(t, gotLine.RTOReceiptTxnID)
}

func TestAllocateRTOLineAlreadyProcessed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-CLY-M")
	line := env.createRTOLine(t, sku.ID, "TL-2003", 1, enums.TrackingRTOInTransit)

	cond := enums.RTOConditionGood
	require.NoError(t, env.client.DB().Model(line).Update("rto_condition", cond).Error)

	txn := env.createReceipt(t, sku.ID, 1)
	_, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationRTO,
		AllocationID:  &line.ID,
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestAllocateStampsOrderWhenLastLineResolves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-INK-L")

	order := &models.Order{ID: uuid.New(), OrderNumber: "TL-2004"}
	require.NoError(t, env.client.DB().Create(order).Error)
	initiated := time.Now().Add(-24 * time.Hour)

	lines := make([]*models.OrderLine, 2)
	for i := range lines {
		lines[i] = &models.OrderLine{
			ID:             uuid.New(),
			OrderID:        order.ID,
			SkuID:          sku.ID,
			Quantity:       1,
			TrackingStatus: enums.TrackingRTODelivered,
			RTOInitiatedAt: &initiated,
		}
		require.NoError(t, env.client.DB().Create(lines[i]).Error)
	}

	for i, line := range lines {
		txn := env.createReceipt(t, sku.ID, 1)
		_, err := env.svc.Allocate(ctx, env.actor, Input{
			TransactionID: txn.ID,
			Type:          enums.AllocationRTO,
			AllocationID:  &line.ID,
		})
		require.NoError(t, err)

		got, err := env.ledger.FindOrderLineByID(ctx, lines[0].ID)
		require.NoError(t, err)
		if i == 0 {
			require.Nil(t, got.RTOReceivedAt, "order must not be stamped while lines remain")
		} else {
			require.NotNil(t, got.RTOReceivedAt, "all lines stamped once the last one resolves")
		}
	}
}

func TestAllocateToAdjustmentClearsReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-INK-M")
	txn := env.createReceipt(t, sku.ID, 3)
	batch := env.createBatch(t, sku.ID, 10, time.Now())

	_, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
		AllocationID:  &batch.ID,
	})
	require.NoError(t, err)

	res, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationAdjustment,
	})
	require.NoError(t, err)
	require.Nil(t, res.ReferenceID)

	updated, err := env.ledger.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ReasonAdjustment, updated.Reason)
	require.Nil(t, updated.ReferenceID)

	got, err := env.ledger.FindBatchByID(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.QtyCompleted)
}

func TestAllocateRejectsOutwardAndMismatchedSku(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sku := env.createSku(t, "BOX-ASH-S")
	other := env.createSku(t, "BOX-ASH-M")

	outward := &models.InventoryTransaction{
		ID:          uuid.New(),
		SkuID:       sku.ID,
		TxnType:     enums.TxnTypeOutward,
		Quantity:    1,
		Reason:      enums.ReasonOrderAllocation,
		CreatedByID: env.actor.UserID,
	}
	require.NoError(t, env.client.DB().Create(outward).Error)

	batch := env.createBatch(t, other.ID, 5, time.Now())
	_, err := env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: outward.ID,
		Type:          enums.AllocationProduction,
		AllocationID:  &batch.ID,
	})
	requireCode(t, err, pkgerrors.CodeBadRequest)

	txn := env.createReceipt(t, sku.ID, 1)
	_, err = env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
		AllocationID:  &batch.ID,
	})
	requireCode(t, err, pkgerrors.CodeBadRequest)

	_, err = env.svc.Allocate(ctx, env.actor, Input{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
	})
	requireCode(t, err, pkgerrors.CodeBadRequest)
}
