// pkg/resolver/plan.go

package resolver

import (
	"fmt"
	"strings"
)

// Stage identifies one group of resources in the realization plan.
type Stage string

const (
	StageInstall       Stage = "install"
	StageConfigure     Stage = "configure"
	StageRunService    Stage = "run-service"
	StageReloadService Stage = "reload-service"
)

// EdgeKind distinguishes plain sequencing from change notification.
type EdgeKind int

const (
	// EdgeOrder only sequences: the target stage runs after the source.
	EdgeOrder EdgeKind = iota
	// EdgeNotify additionally signals: a change in the source stage
	// triggers a restart in the target, beyond mere sequencing.
	EdgeNotify
)

func (k EdgeKind) String() string {
	if k == EdgeNotify {
		return "notify"
	}
	return "order"
}

// Edge is one dependency between two stages.
type Edge struct {
	From Stage
	To   Stage
	Kind EdgeKind
}

// Plan is the fixed-order realization plan. Stage order and edges are
// deterministic for a given ParameterSet.
type Plan struct {
	Stages []Stage
	Edges  []Edge
}

// BuildPlan emits the install → configure → run-service → reload-service
// sequence. With restartOnChange, configuration drift actively restarts the
// service via a notify edge, in addition to the ordering edge.
func BuildPlan(restartOnChange bool) Plan {
	stages := []Stage{StageInstall, StageConfigure, StageRunService, StageReloadService}

	edges := make([]Edge, 0, len(stages))
	for i := 0; i < len(stages)-1; i++ {
		edges = append(edges, Edge{From: stages[i], To: stages[i+1], Kind: EdgeOrder})
	}
	if restartOnChange {
		edges = append(edges, Edge{From: StageConfigure, To: StageRunService, Kind: EdgeNotify})
	}

	return Plan{Stages: stages, Edges: edges}
}

// NotifiesOnConfigChange reports whether configuration drift restarts the
// service.
func (p Plan) NotifiesOnConfigChange() bool {
	for _, e := range p.Edges {
		if e.Kind == EdgeNotify && e.From == StageConfigure && e.To == StageRunService {
			return true
		}
	}
	return false
}

// String renders the plan for operator output.
func (p Plan) String() string {
	var b strings.Builder
	b.WriteString("stages:\n")
	for _, s := range p.Stages {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	b.WriteString("edges:\n")
	for _, e := range p.Edges {
		fmt.Fprintf(&b, "  - %s -> %s (%s)\n", e.From, e.To, e.Kind)
	}
	return b.String()
}
