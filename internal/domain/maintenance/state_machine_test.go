package maintenance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
)

func TestParseAction(t *testing.T) {
	a, err := maintenance.ParseAction(" inspect ")
	require.NoError(t, err)
	assert.Equal(t, maintenance.ActionInspect, a)

	_, err = maintenance.ParseAction("EXPLODE")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, "UNKNOWN_ACTION", domain.CodeOf(err))
}

func TestNextStatus_Legales(t *testing.T) {
	cases := []struct {
		from   entity.MachineStatus
		action maintenance.Action
		want   entity.MachineStatus
	}{
		{entity.MachineIntake, maintenance.ActionInspect, entity.MachineUnderInspection},
		{entity.MachineReceivedAtCenter, maintenance.ActionInspect, entity.MachineUnderInspection},
		{entity.MachineAwaitingApproval, maintenance.ActionInspect, entity.MachineUnderInspection},
		{entity.MachineUnderInspection, maintenance.ActionRequestApproval, entity.MachineAwaitingApproval},
		{entity.MachineAwaitingApproval, maintenance.ActionRequestApproval, entity.MachineAwaitingApproval},
		{entity.MachineUnderInspection, maintenance.ActionRepair, entity.MachineRepaired},
		{entity.MachineAwaitingApproval, maintenance.ActionRepair, entity.MachineRepaired},
		{entity.MachineIntake, maintenance.ActionScrap, entity.MachineScrapped},
		{entity.MachineUnderInspection, maintenance.ActionReturnAsIs, entity.MachineReadyForReturn},
		{entity.MachineRepaired, maintenance.ActionMarkReadyForReturn, entity.MachineReadyForReturn},
		{entity.MachineScrapped, maintenance.ActionMarkReadyForReturn, entity.MachineReadyForReturn},
	}
	for _, tc := range cases {
		got, err := maintenance.NextStatus(tc.from, tc.action)
		require.NoError(t, err, "%s desde %s", tc.action, tc.from)
		assert.Equal(t, tc.want, got, "%s desde %s", tc.action, tc.from)
	}
}

func TestNextStatus_Ilegales(t *testing.T) {
	cases := []struct {
		from   entity.MachineStatus
		action maintenance.Action
	}{
		{entity.MachineIntake, maintenance.ActionRepair},
		{entity.MachineIntake, maintenance.ActionRequestApproval},
		{entity.MachineRepaired, maintenance.ActionInspect},
		{entity.MachineRepaired, maintenance.ActionRepair},
		{entity.MachineInTransit, maintenance.ActionInspect},
		{entity.MachineReturning, maintenance.ActionMarkReadyForReturn},
		{entity.MachineCompleted, maintenance.ActionInspect},
		{entity.MachineUnderInspection, maintenance.ActionMarkReadyForReturn},
	}
	for _, tc := range cases {
		_, err := maintenance.NextStatus(tc.from, tc.action)
		require.Error(t, err, "%s desde %s", tc.action, tc.from)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
}

func TestResolutionFor(t *testing.T) {
	assert.Equal(t, entity.ResolutionRepaired, *maintenance.ResolutionFor(maintenance.ActionRepair))
	assert.Equal(t, entity.ResolutionScrapped, *maintenance.ResolutionFor(maintenance.ActionScrap))
	assert.Equal(t, entity.ResolutionReturnedAsIs, *maintenance.ResolutionFor(maintenance.ActionReturnAsIs))
	assert.Nil(t, maintenance.ResolutionFor(maintenance.ActionInspect))
}

func TestCanSetLocation(t *testing.T) {
	assert.NoError(t, maintenance.CanSetLocation(entity.MachineIntake, entity.MachineClientRepair))

	err := maintenance.CanSetLocation(entity.MachineIntake, entity.MachineInTransit)
	assert.Equal(t, "STATUS_NOT_MANUAL", domain.CodeOf(err))

	err = maintenance.CanSetLocation(entity.MachineIntake, entity.MachineReturning)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = maintenance.CanSetLocation(entity.MachineInTransit, entity.MachineAtCenter)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestNormalizeSerial(t *testing.T) {
	s, err := maintenance.NormalizeSerial("  sn-001 ")
	require.NoError(t, err)
	assert.Equal(t, "SN-001", s)

	// full-width desde lector de código de barras
	s, err = maintenance.NormalizeSerial("ｓｎ－００２")
	require.NoError(t, err)
	assert.Equal(t, "SN-002", s)

	_, err = maintenance.NormalizeSerial("   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = maintenance.NormalizeSerials([]string{"sn-1", "SN-1"})
	assert.Equal(t, "DUPLICATE_SERIAL", domain.CodeOf(err))
}
