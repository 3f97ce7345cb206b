package checks

import (
	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
)

var (
	busIDEntry = partEntry("bus_id",
		"Check bus IDs are present", checkBusID)
	busesEntry = partEntry("buses",
		"Check buses are properly defined", checkBuses)

	busNodesEntry = MetadataEntry{
		Descriptor: Descriptor{
			Name:        "bus_nodes",
			Description: "Check bus nodes are present and valid",
			NeedsPath:   true,
			CanFix:      true,
		},
		New: func(p *fzp.Part, src *Source) Checker {
			return &busNodes{part: p, src: src}
		},
	}
)

func checkBusID(p *fzp.Part, f *Findings) {
	for _, b := range p.Buses() {
		if b.ID == "" {
			f.Errorf("Bus with missing ID found (%d node members).", len(b.Nodes))
		}
	}
}

func checkBuses(p *fzp.Part, f *Findings) {
	for _, b := range p.Buses() {
		if b.ID == "" {
			f.Errorf("Bus found without an ID (%d node members).", len(b.Nodes))
		}
		if len(b.Nodes) > 0 {
			continue
		}
		if b.ID != "" {
			f.Errorf("Bus '%s' has no node members.", b.ID)
		} else {
			f.Errorf("Bus has no node members.")
		}
	}
}

// busNodes checks node membership and removes buses without members.
type busNodes struct {
	part  *fzp.Part
	src   *Source
	empty []string
}

func (c *busNodes) Check(r *report.Report) report.Result {
	f := NewFindings("bus_nodes", r)
	c.empty = nil
	for _, b := range c.part.Buses() {
		id := b.ID
		if id == "" {
			id = "unknown"
		}
		if len(b.Nodes) == 0 {
			f.Errorf("Bus '%s' has no node members.", id)
			if b.ID != "" {
				c.empty = append(c.empty, b.ID)
			}
			continue
		}
		for _, n := range b.Nodes {
			if n.ConnectorID == "" {
				f.Errorf("Node missing connectorId in Bus '%s'.", id)
			}
		}
	}
	return f.Result()
}

// Fix removes the serialized block of every empty bus found by Check.
func (c *busNodes) Fix() ([]doctor.Fix, error) {
	if len(c.empty) == 0 {
		return nil, nil
	}
	fixes, err := doctor.Apply(c.src.Path, doctor.RemoveEmptyBuses(c.empty))
	if err != nil {
		return nil, err
	}
	c.empty = nil
	return fixes, nil
}
