package status

import (
	"fmt"
	"slices"

	"github.com/matheus3301/wppsim/internal/model"
)

// deliveryTransitions only ever moves forward. READ is terminal, FAILED is
// reachable only before delivery.
var deliveryTransitions = map[model.Delivery][]model.Delivery{
	model.Sent:      {model.Delivered, model.Read, model.Failed},
	model.Delivered: {model.Read},
	model.Read:      {},
	model.Failed:    {},
}

// CanAdvance reports whether a message in status from may move to to.
func CanAdvance(from, to model.Delivery) bool {
	return slices.Contains(deliveryTransitions[from], to)
}

// Advance returns to if the transition is allowed, or an error naming both ends.
func Advance(from, to model.Delivery) (model.Delivery, error) {
	if !CanAdvance(from, to) {
		return from, fmt.Errorf("invalid delivery transition from %s to %s", from, to)
	}
	return to, nil
}

var callTransitions = map[model.CallState][]model.CallState{
	model.CallRinging:   {model.CallConnected, model.CallEnded, model.CallMissed},
	model.CallConnected: {model.CallEnded},
	model.CallEnded:     {},
	model.CallMissed:    {},
}

// CanAdvanceCall reports whether a call in state from may move to to.
func CanAdvanceCall(from, to model.CallState) bool {
	return slices.Contains(callTransitions[from], to)
}
