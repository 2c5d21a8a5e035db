package core_test

import (
	"errors"
	"testing"

	"github.com/dtnlab/sabre/core"
)

// acceptAll is a minimal manager for construction tests.
type acceptAll struct{ initOK bool }

func (m *acceptAll) TryInit(core.ContactInfo) bool { return m.initOK }

func (m *acceptAll) DryRunTx(core.ContactInfo, core.Date, *core.Bundle) (core.TxData, bool) {
	return core.TxData{}, true
}

func (m *acceptAll) ScheduleTx(core.ContactInfo, core.Date, *core.Bundle) (core.TxData, bool) {
	return core.TxData{}, true
}

func TestNewContact_InvalidWindow(t *testing.T) {
	info := core.ContactInfo{TxNode: 0, RxNode: 1, Start: 10, End: 10}
	_, err := core.NewContact(0, info, &acceptAll{initOK: true})
	if !errors.Is(err, core.ErrInvalidContact) {
		t.Fatalf("expected ErrInvalidContact, got %v", err)
	}
}

func TestNewContact_ManagerRejection(t *testing.T) {
	info := core.ContactInfo{TxNode: 0, RxNode: 1, Start: 0, End: 10}
	_, err := core.NewContact(0, info, &acceptAll{initOK: false})
	if !errors.Is(err, core.ErrManagerInit) {
		t.Fatalf("expected ErrManagerInit, got %v", err)
	}
}

func TestBundle_Shadows(t *testing.T) {
	cached := &core.Bundle{Size: 10, Priority: core.PriorityStandard}
	smaller := &core.Bundle{Size: 5, Priority: core.PriorityStandard}
	larger := &core.Bundle{Size: 20, Priority: core.PriorityStandard}
	expedited := &core.Bundle{Size: 5, Priority: core.PriorityExpedited}

	if !cached.Shadows(smaller, true, true) {
		t.Error("a larger cached bundle must shadow a smaller request")
	}
	if cached.Shadows(larger, true, false) {
		t.Error("a smaller cached bundle must not shadow a larger request with checkSize")
	}
	if cached.Shadows(expedited, false, true) {
		t.Error("a lower-priority cached bundle must not shadow an expedited request with checkPriority")
	}
	if !cached.Shadows(larger, false, false) {
		t.Error("with both checks off every cached bundle shadows every request")
	}
}

func TestBundle_CloneIsIndependent(t *testing.T) {
	b := core.Bundle{Destinations: []core.NodeID{1, 2}}
	c := b.Clone()
	c.Destinations[0] = 9
	if b.Destinations[0] != 1 {
		t.Fatal("Clone shares its destination slice with the original")
	}
}
