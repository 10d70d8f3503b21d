package domain

// StatsSummary aggregates one user's tickets by state and priority.
type StatsSummary struct {
	Total        int64
	PorEstado    map[Estado]int64
	PorPrioridad map[Prioridad]int64
}

// NewStatsSummary returns an empty, non-nil summary.
func NewStatsSummary() StatsSummary {
	return StatsSummary{
		PorEstado:    make(map[Estado]int64),
		PorPrioridad: make(map[Prioridad]int64),
	}
}
