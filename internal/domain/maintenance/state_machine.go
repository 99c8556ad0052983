// Package maintenance contiene las reglas puras del ciclo de vida de una máquina:
// qué acción es legal desde qué estado y a qué estado lleva. No toca persistencia.
package maintenance

import (
	"strings"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// Action acción solicitada sobre una máquina.
type Action string

const (
	ActionInspect            Action = "INSPECT"
	ActionRequestApproval    Action = "REQUEST_APPROVAL"
	ActionRepair             Action = "REPAIR"
	ActionScrap              Action = "SCRAP"
	ActionReturnAsIs         Action = "RETURN_AS_IS"
	ActionMarkReadyForReturn Action = "MARK_READY_FOR_RETURN"
)

// ParseAction valida la acción antes de leer o escribir nada.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case ActionInspect, ActionRequestApproval, ActionRepair, ActionScrap,
		ActionReturnAsIs, ActionMarkReadyForReturn:
		return a, nil
	}
	return "", domain.Validation("UNKNOWN_ACTION", "acción desconocida: "+s)
}

// NextStatus devuelve el estado destino o ErrInvalidTransition.
// Las condiciones que dependen de otras entidades (aprobación pendiente o aprobada)
// las verifica el caso de uso.
func NextStatus(current entity.MachineStatus, action Action) (entity.MachineStatus, error) {
	if current.IsTransit() || current == entity.MachineCompleted {
		return "", domain.InvalidTransition(string(current), string(action))
	}
	awaiting := current == entity.MachineAwaitingApproval

	switch action {
	case ActionInspect:
		if current.IsPreRepair() || awaiting {
			return entity.MachineUnderInspection, nil
		}
	case ActionRequestApproval:
		if current == entity.MachineUnderInspection || awaiting {
			return entity.MachineAwaitingApproval, nil
		}
	case ActionRepair:
		if current == entity.MachineUnderInspection || awaiting {
			return entity.MachineRepaired, nil
		}
	case ActionScrap:
		if current.IsPreRepair() || awaiting {
			return entity.MachineScrapped, nil
		}
	case ActionReturnAsIs:
		if current.IsPreRepair() || awaiting {
			return entity.MachineReadyForReturn, nil
		}
	case ActionMarkReadyForReturn:
		if current == entity.MachineRepaired || current == entity.MachineScrapped {
			return entity.MachineReadyForReturn, nil
		}
	}
	return "", domain.InvalidTransition(string(current), string(action))
}

// ResolutionFor resultado terminal que fija la acción (nil si no resuelve).
func ResolutionFor(action Action) *entity.Resolution {
	var r entity.Resolution
	switch action {
	case ActionRepair:
		r = entity.ResolutionRepaired
	case ActionScrap:
		r = entity.ResolutionScrapped
	case ActionReturnAsIs:
		r = entity.ResolutionReturnedAsIs
	default:
		return nil
	}
	return &r
}

// ManualLocations estados que un usuario puede fijar a mano. Los de tránsito
// (IN_TRANSIT, RETURNING) y los de recepción solo los pone una orden de traslado.
var ManualLocations = map[entity.MachineStatus]struct{}{
	entity.MachineIntake:         {},
	entity.MachineAtCenter:       {},
	entity.MachineClientRepair:   {},
	entity.MachineExternalRepair: {},
}

// CanSetLocation valida un cambio manual de ubicación.
func CanSetLocation(current, target entity.MachineStatus) error {
	if _, ok := ManualLocations[target]; !ok {
		return domain.Validation("STATUS_NOT_MANUAL", "el estado "+string(target)+" solo lo asigna una orden de traslado o una transición")
	}
	if current.IsTransit() {
		return domain.InvalidTransition(string(current), "SET_LOCATION")
	}
	if !current.IsPreRepair() {
		return domain.InvalidTransition(string(current), "SET_LOCATION")
	}
	return nil
}
