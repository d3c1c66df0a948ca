package workload

import (
	"github.com/wilhasse/goslice/mem"
	"github.com/wilhasse/goslice/slice"
)

// GrowthStep records a capacity change seen while appending.
type GrowthStep struct {
	Length   int `yaml:"length"`
	Capacity int `yaml:"capacity"`
}

// GrowthTable appends count elements to a slice made with initialCap and
// returns each capacity change along with the number of reallocations.
func GrowthTable(initialCap, count int) ([]GrowthStep, uint64) {
	counter := mem.NewCountingAllocator[struct{}](nil)
	s := slice.MakeWith[struct{}](counter, initialCap)
	defer s.Destroy()

	steps := []GrowthStep{{Length: 0, Capacity: s.Cap()}}
	for i := 0; i < count; i++ {
		if !s.Append(struct{}{}) {
			break
		}
		if c := s.Cap(); c != steps[len(steps)-1].Capacity {
			steps = append(steps, GrowthStep{Length: s.Len(), Capacity: c})
		}
	}
	return steps, counter.Stats().Reallocs
}
