package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Mantenimiento-api/internal/application/debt"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/application/transfer"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Maintenance *maintenance.Service
	Ledger      *inventory.Ledger
	Debts       *debt.UseCase
	Transfers   *transfer.UseCase
	JWTSecret   string
	ServiceName string
	Log         *logger.Logger
	Metrics     *metrics.Metrics
}

// paymentRoles roles que pueden registrar abonos; los técnicos no manejan dinero.
var paymentRoles = []string{
	access.RoleSuperAdmin, access.RoleManagement, access.RoleBranchManager,
	access.RoleCenterManager, access.RoleAccountant,
}

// Router registra middleware común, /health, /metrics y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log, deps.Metrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Todas las rutas de negocio requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	machineHandler := NewMachineHandler(deps.Maintenance)
	machines := api.Group("/machines")
	machines.Post("/", machineHandler.RegisterIntake)
	machines.Get("/", machineHandler.List)
	machines.Get("/:serial", machineHandler.Get)
	machines.Get("/:serial/history", machineHandler.History)
	machines.Post("/:serial/transitions", machineHandler.Transition)
	machines.Put("/:serial/location", machineHandler.SetLocation)
	machines.Delete("/:serial", machineHandler.Remove)

	assignmentHandler := NewAssignmentHandler(deps.Maintenance)
	assignments := api.Group("/assignments")
	assignments.Post("/", assignmentHandler.Create)
	assignments.Get("/", assignmentHandler.ListOpen)
	assignments.Post("/:id/start", assignmentHandler.Start)
	assignments.Post("/:id/cancel", assignmentHandler.Cancel)
	assignments.Post("/:id/complete-direct", assignmentHandler.CompleteDirect)
	assignments.Post("/:id/complete-after-approval", assignmentHandler.CompleteAfterApproval)

	approvals := api.Group("/approvals")
	approvals.Post("/", assignmentHandler.RequestApproval)
	approvals.Get("/pending", assignmentHandler.ListPendingApprovals)
	approvals.Post("/:id/respond", assignmentHandler.RespondApproval)

	debtHandler := NewDebtHandler(deps.Debts)
	debts := api.Group("/debts")
	debts.Get("/", debtHandler.List)
	debts.Get("/:id", debtHandler.Get)
	debts.Get("/:id/payments", debtHandler.ListPayments)
	debts.Post("/:id/payments", RequireRole(paymentRoles...), debtHandler.RecordPayment)

	transferHandler := NewTransferHandler(deps.Transfers)
	transfers := api.Group("/transfers")
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv := api.Group("/inventory")
	inv.Post("/stock-in", inventoryHandler.ReceiveStock)
	inv.Get("/stock", inventoryHandler.ListStock)
	inv.Get("/reconcile", inventoryHandler.Reconcile)
}
