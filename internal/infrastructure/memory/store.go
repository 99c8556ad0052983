// Package memory implementa todos los puertos de repositorio en memoria con transacciones
// reales: Run serializa las transacciones y restaura una copia del estado si fn falla.
// Se usa en desarrollo (STORE_DRIVER=memory) y en los tests de aplicación.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

type stockKey struct{ branchID, partID string }

// state todos los datos; cada registro se guarda como copia propia.
type state struct {
	machines    []*entity.WarehouseMachine
	history     []*entity.MachineMovement
	assignments []*entity.ServiceAssignment
	requests    []*entity.MaintenanceRequest
	approvals   []*entity.MaintenanceApprovalRequest
	parts       map[string]*entity.SparePart
	stock       map[stockKey]*entity.InventoryItem
	movements   []*entity.StockMovement
	debts       []*entity.BranchDebt
	payments    []*entity.DebtPayment
	transfers   []*entity.TransferOrder
}

func newState() *state {
	return &state{
		parts: make(map[string]*entity.SparePart),
		stock: make(map[stockKey]*entity.InventoryItem),
	}
}

func (s *state) clone() *state {
	out := newState()
	for _, m := range s.machines {
		c := m.Clone()
		out.machines = append(out.machines, &c)
	}
	for _, mv := range s.history {
		c := *mv
		out.history = append(out.history, &c)
	}
	for _, a := range s.assignments {
		c := a.Clone()
		out.assignments = append(out.assignments, &c)
	}
	for _, r := range s.requests {
		c := r.Clone()
		out.requests = append(out.requests, &c)
	}
	for _, a := range s.approvals {
		c := a.Clone()
		out.approvals = append(out.approvals, &c)
	}
	for k, p := range s.parts {
		c := *p
		out.parts[k] = &c
	}
	for k, it := range s.stock {
		c := *it
		out.stock[k] = &c
	}
	for _, mv := range s.movements {
		c := *mv
		out.movements = append(out.movements, &c)
	}
	for _, d := range s.debts {
		c := *d
		out.debts = append(out.debts, &c)
	}
	for _, p := range s.payments {
		c := *p
		out.payments = append(out.payments, &c)
	}
	for _, o := range s.transfers {
		c := o.Clone()
		out.transfers = append(out.transfers, &c)
	}
	return out
}

// Store almacén en memoria.
type Store struct {
	txMu sync.Mutex   // una transacción a la vez: equivale a bloquear todas las filas
	mu   sync.RWMutex // protege data
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// SeedPart registra un repuesto del catálogo (dato maestro).
func (s *Store) SeedPart(p entity.SparePart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := p
	s.data.parts[p.ID] = &c
}

// Repos devuelve los repositorios sobre el almacén. Fuera de Run no hay aislamiento.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Machines:       &machineRepo{s: s},
		History:        &historyRepo{s: s},
		Assignments:    &assignmentRepo{s: s},
		Requests:       &requestRepo{s: s},
		Approvals:      &approvalRepo{s: s},
		Inventory:      &inventoryRepo{s: s},
		StockMovements: &stockMovementRepo{s: s},
		Debts:          &debtRepo{s: s},
		Payments:       &paymentRepo{s: s},
		Transfers:      &transferRepo{s: s},
	}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn en una transacción serializada. Si fn devuelve error o entra en pánico,
// el estado vuelve exactamente a como estaba antes de Run (el pánico se propaga).
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Infrastructure(err)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(s.Repos()); err != nil {
		rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		rollback()
		return domain.Infrastructure(err)
	}
	return nil
}
