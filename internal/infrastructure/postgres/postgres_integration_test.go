//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/Mantenimiento-api/internal/application/debt"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/settlement"
	"github.com/jhoicas/Mantenimiento-api/internal/application/transfer"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
)

var (
	admin  = access.Actor{UserID: "admin", Role: access.RoleSuperAdmin}
	center = access.Actor{UserID: "jefe-centro", BranchID: "C", Role: access.RoleCenterManager}
	origin = access.Actor{UserID: "gerente-o", BranchID: "O", Role: access.RoleBranchManager}
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	tx        *postgres.TxRunner

	ledger    *inventory.Ledger
	svc       *maintenance.Service
	debts     *debt.UseCase
	transfers *transfer.UseCase
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	ctr, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("mantenimiento"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = ctr

	dsn, err := ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	cfg, err := postgres.ParsePoolConfig(dsn)
	s.Require().NoError(err)
	s.pool, err = pgxpool.NewWithConfig(s.ctx, cfg)
	s.Require().NoError(err)

	s.Require().NoError(postgres.Migrate(s.ctx, s.pool, nil))
	// segunda corrida: nada pendiente
	s.Require().NoError(postgres.Migrate(s.ctx, s.pool, nil))

	s.tx = postgres.NewTxRunner(s.pool, nil)
	s.ledger = inventory.NewLedger(s.tx, nil, nil)
	s.svc = maintenance.NewService(s.tx, settlement.NewEngine(s.ledger, nil, nil), maintenance.Config{}, nil, nil)
	s.debts = debt.NewUseCase(s.tx, nil, nil)
	s.transfers = transfer.NewUseCase(s.tx, nil, nil)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `
		TRUNCATE debt_payments, branch_debts, stock_movements, inventory, transfer_order_items,
			transfer_orders, maintenance_approvals, service_assignments, maintenance_requests,
			machine_movements, warehouse_machines, spare_parts CASCADE`)
	s.Require().NoError(err)
	_, err = s.pool.Exec(s.ctx, `
		INSERT INTO spare_parts (id, part_number, name, default_cost) VALUES
			('P', 'P-100', 'Lector de banda', 150),
			('P2', 'P-200', 'Teclado', 80)`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) intake(serial string) *entity.WarehouseMachine {
	m, err := s.svc.RegisterIntake(s.ctx, admin, dto.RegisterIntakeRequest{
		SerialNumber: serial, Model: "VX520", BranchID: "C", OriginBranchID: "O",
	})
	s.Require().NoError(err)
	return m
}

func (s *PostgresIntegrationSuite) stock(branch, part string, qty int) {
	_, err := s.ledger.ReceiveStock(s.ctx, admin, dto.ReceiveStockRequest{BranchID: branch, PartID: part, Quantity: qty})
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) quantity(branch, part string) int {
	rec, err := s.ledger.Reconcile(s.ctx, admin, branch, part)
	s.Require().NoError(err)
	s.Require().True(rec.Consistent, "cantidad %d vs movimientos %d", rec.Quantity, rec.MovementSum)
	return rec.Quantity
}

func (s *PostgresIntegrationSuite) TestSerialDuplicado() {
	s.intake("SN-1")
	_, err := s.svc.RegisterIntake(s.ctx, admin, dto.RegisterIntakeRequest{
		SerialNumber: "sn-1", BranchID: "C", OriginBranchID: "O",
	})
	s.ErrorIs(err, domain.ErrConflict)
}

func (s *PostgresIntegrationSuite) TestReparacionEntreSucursalesYAbonos() {
	s.intake("SN-2")
	s.stock("C", "P", 5)

	a, err := s.svc.CreateAssignment(s.ctx, center, dto.CreateAssignmentRequest{SerialNumber: "SN-2", TechnicianID: "tec-1"})
	s.Require().NoError(err)

	out, err := s.svc.CompleteDirect(s.ctx, center, dto.CompleteDirectRequest{
		AssignmentID: a.ID,
		Parts:        []dto.PartLineDTO{{PartID: "P", Quantity: 2, UnitCost: decimal.NewFromInt(150)}},
	})
	s.Require().NoError(err)
	s.Equal(3, s.quantity("C", "P"))
	s.Require().NotNil(out.Debt)
	s.True(out.Debt.RemainingAmount.Equal(decimal.NewFromInt(300)))
	s.Equal(entity.MachineRepaired, out.Machine.Status)
	s.Require().Len(out.Machine.UsedParts, 1)

	res, err := s.debts.RecordPayment(s.ctx, origin, dto.RecordPaymentRequest{
		DebtID: out.Debt.ID, Amount: decimal.NewFromInt(100), ReceiptNumber: "R-1",
	})
	s.Require().NoError(err)
	s.Equal(entity.DebtPendingPayment, res.Debt.Status)

	_, err = s.debts.RecordPayment(s.ctx, origin, dto.RecordPaymentRequest{
		DebtID: out.Debt.ID, Amount: decimal.NewFromInt(1), ReceiptNumber: "R-1",
	})
	s.ErrorIs(err, domain.ErrDuplicateReceipt)

	_, err = s.debts.RecordPayment(s.ctx, origin, dto.RecordPaymentRequest{
		DebtID: out.Debt.ID, Amount: decimal.NewFromInt(201), ReceiptNumber: "R-2",
	})
	s.Equal("PAYMENT_EXCEEDS_BALANCE", domain.CodeOf(err))

	res, err = s.debts.RecordPayment(s.ctx, origin, dto.RecordPaymentRequest{
		DebtID: out.Debt.ID, Amount: decimal.NewFromInt(200), ReceiptNumber: "R-3",
	})
	s.Require().NoError(err)
	s.Equal(entity.DebtPaid, res.Debt.Status)
	s.True(res.Debt.RemainingAmount.IsZero())

	payments, err := s.debts.ListPayments(s.ctx, origin, out.Debt.ID)
	s.Require().NoError(err)
	s.Len(payments, 2)
}

func (s *PostgresIntegrationSuite) TestSegundoRepuestoFallaRevierteTodo() {
	s.intake("SN-3")
	s.stock("C", "P", 5)
	s.stock("C", "P2", 1)

	_, err := s.svc.TransitionMachine(s.ctx, center, "SN-3", dto.TransitionRequest{Action: "INSPECT"})
	s.Require().NoError(err)
	_, err = s.svc.TransitionMachine(s.ctx, center, "SN-3", dto.TransitionRequest{
		Action: "REPAIR",
		Parts: []dto.PartLineDTO{
			{PartID: "P", Quantity: 2, UnitCost: decimal.NewFromInt(150)},
			{PartID: "P2", Quantity: 3, UnitCost: decimal.NewFromInt(80)},
		},
	})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	s.Equal(5, s.quantity("C", "P"))
	s.Equal(1, s.quantity("C", "P2"))
	m, err := s.svc.GetMachine(s.ctx, center, "SN-3")
	s.Require().NoError(err)
	s.Equal(entity.MachineUnderInspection, m.Status)
}

func (s *PostgresIntegrationSuite) TestDescuentosConcurrentesNuncaDejanStockNegativo() {
	s.stock("C", "P", 7)

	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.Run(s.ctx, func(r ports.Repos) error {
				_, err := s.ledger.DeductInTx(s.ctx, r, inventory.DeductInput{BranchID: "C", PartID: "P", Quantity: 2})
				return err
			})
			if err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(3), ok)
	s.Equal(1, s.quantity("C", "P"))
}

func (s *PostgresIntegrationSuite) TestUnaSolaAprobacionPendiente() {
	s.intake("SN-4")
	_, err := s.svc.TransitionMachine(s.ctx, center, "SN-4", dto.TransitionRequest{Action: "INSPECT"})
	s.Require().NoError(err)

	total := decimal.NewFromInt(500)
	res, err := s.svc.TransitionMachine(s.ctx, center, "SN-4", dto.TransitionRequest{Action: "REQUEST_APPROVAL", TotalCost: &total})
	s.Require().NoError(err)
	s.Require().NotNil(res.Approval)

	_, err = s.svc.TransitionMachine(s.ctx, center, "SN-4", dto.TransitionRequest{Action: "REQUEST_APPROVAL", TotalCost: &total})
	s.Equal("APPROVAL_PENDING", domain.CodeOf(err))

	pending, err := s.svc.ListPendingApprovals(s.ctx, origin)
	s.Require().NoError(err)
	s.Len(pending, 1)

	// dos respuestas simultáneas: solo una se aplica
	var wg sync.WaitGroup
	var ok int32
	for _, status := range []string{"APPROVED", "APPROVED"} {
		wg.Add(1)
		go func(st string) {
			defer wg.Done()
			if _, err := s.svc.RespondApproval(s.ctx, origin, res.Approval.ID, dto.RespondApprovalRequest{Status: st}); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}(status)
	}
	wg.Wait()
	s.Equal(int32(1), ok)
}

func (s *PostgresIntegrationSuite) TestTrasladoRecepcionUnica() {
	for _, sn := range []string{"SN-10", "SN-11"} {
		_, err := s.svc.RegisterIntake(s.ctx, admin, dto.RegisterIntakeRequest{
			SerialNumber: sn, BranchID: "O", OriginBranchID: "O",
		})
		s.Require().NoError(err)
	}

	order, err := s.transfers.CreateBulkTransfer(s.ctx, origin, dto.CreateTransferRequest{
		FromBranchID: "O", ToBranchID: "C", Type: entity.TransferSendToCenter,
		SerialNumbers: []string{"SN-11", "SN-10"},
	})
	s.Require().NoError(err)

	got, err := s.transfers.GetTransfer(s.ctx, center, order.ID)
	s.Require().NoError(err)
	s.Equal([]string{"SN-11", "SN-10"}, got.Serials())
	s.Equal(entity.MachineIntake, got.Items[0].PreviousStatus)

	var wg sync.WaitGroup
	var ok, conflicts int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.transfers.ReceiveShipment(s.ctx, center, order.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case domain.CodeOf(err) == "ORDER_ALREADY_RECEIVED":
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), ok)
	s.Equal(int32(1), conflicts)

	m, err := s.svc.GetMachine(s.ctx, center, "SN-10")
	s.Require().NoError(err)
	s.Equal("C", m.BranchID)
	s.Equal(entity.MachineReceivedAtCenter, m.Status)

	history, err := s.svc.MachineHistory(s.ctx, center, "SN-10")
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(entity.MovementTransferIn, history[2].Action)

	list, err := s.transfers.ListTransfers(s.ctx, origin, dto.TransferListRequest{PageRequest: dto.PageRequest{Limit: 10}})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(entity.TransferReceived, list[0].Status)
	s.Len(list[0].Items, 2)
	s.WithinDuration(time.Now(), *list[0].ReceivedAt, time.Minute)
}
