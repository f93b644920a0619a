/*
workflow.go - Workflow wiring

PURPOSE:
  Workflow bundles the store and the external collaborators behind the
  operations the presentation layer consumes: submit/mutate (ledger.go),
  detect (detector.go), resolve (resolver.go), approve (gate.go), and the
  daily view (view.go).
*/
package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Workflow exposes the consolidation operations. Safe for concurrent use;
// all mutation goes through the store's WithTx contract.
type Workflow struct {
	store Store
	dir   Directory
	authz Authorizer
	audit AuditSink
}

func NewWorkflow(store Store, dir Directory, authz Authorizer, audit AuditSink) *Workflow {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &Workflow{store: store, dir: dir, authz: authz, audit: audit}
}

// emitAudit records an event fire-and-forget. A failing sink is logged and
// otherwise ignored; the state transition already committed.
func (w *Workflow) emitAudit(ctx context.Context, action, entity, entityID string, actorID OfficerID) {
	ev := AuditEvent{
		ID:       uuid.NewString(),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		ActorID:  actorID,
		At:       time.Now().UTC(),
	}
	if err := w.audit.Record(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"action": action,
			"entity": entityID,
			"actor":  actorID,
		}).WithError(err).Warn("audit sink rejected event")
	}
}

// officerName resolves a display name, falling back to the raw id. Display
// lookup failures never fail the workflow.
func (w *Workflow) officerName(ctx context.Context, id OfficerID) string {
	if w.dir == nil {
		return string(id)
	}
	name, err := w.dir.OfficerName(ctx, id)
	if err != nil || name == "" {
		return string(id)
	}
	return name
}

func (w *Workflow) employeeName(ctx context.Context, id EmployeeID) string {
	if w.dir == nil {
		return string(id)
	}
	name, err := w.dir.EmployeeName(ctx, id)
	if err != nil || name == "" {
		return string(id)
	}
	return name
}
